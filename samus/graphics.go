package samus

import (
	"fmt"

	"github.com/bodgit/smsprite/bitplane"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/rom"
)

const (
	progressionSize = 4
	dmaEntrySize    = 7
	halfRow         = 0x100

	maxTopDMA    = 0x0C
	maxBottomDMA = 0x0A
)

// Tilemaps returns the frame map parts of each of the n frames of pose id,
// the top half of the sprite followed by the bottom half
func Tilemaps(img *rom.Image, id, n int) ([][]framemap.Part, error) {
	base := TilemapBase.ToPC()

	halves := [2][]uint16{}
	for i, table := range []rom.Address{TopHalfTable, BottomHalfTable} {
		ptr, err := img.Uint16(table.ToPC() + id*2)
		if err != nil {
			return nil, err
		}
		pc := base + int(ptr)*2
		halves[i] = make([]uint16, n)
		for j := range halves[i] {
			if halves[i][j], err = img.Uint16(pc + j*2); err != nil {
				return nil, err
			}
		}
	}

	maps := make([][]framemap.Part, n)
	for i := range maps {
		for _, offset := range []uint16{halves[0][i], halves[1][i]} {
			if offset == 0 {
				continue
			}
			parts, err := framemap.Read(img, FrameMapBase.ToPC()+int(offset))
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			maps[i] = append(maps[i], parts...)
		}
	}

	return maps, nil
}

type dmaEntry struct {
	pc    int
	part1 int
	part2 int
}

func readDMA(img *rom.Image, table rom.Address, index, entry uint8) (dmaEntry, error) {
	ptr, err := img.Uint16(table.ToPC() + int(index)*2)
	if err != nil {
		return dmaEntry{}, err
	}

	at, err := ProgressionBase.Add(ptr).Pak()
	if err != nil {
		return dmaEntry{}, err
	}

	b, err := img.Read(at+int(entry)*dmaEntrySize, dmaEntrySize)
	if err != nil {
		return dmaEntry{}, err
	}

	src := rom.Address(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16)
	pc, err := src.Pak()
	if err != nil {
		return dmaEntry{}, err
	}
	e := dmaEntry{
		pc:    pc,
		part1: int(b[3]) | int(b[4])<<8,
		part2: int(b[5]) | int(b[6])<<8,
	}
	if e.part1 > halfRow || e.part2 > halfRow {
		return dmaEntry{}, fmt.Errorf("samus: DMA transfer from %s of 0x%X+0x%X bytes exceeds a half row", src, e.part1, e.part2)
	}
	return e, nil
}

// appendTiles decodes n bytes at pc and pads the result to a half row
func appendTiles(img *rom.Image, tiles []bitplane.Tile, pc, n int) ([]bitplane.Tile, error) {
	b, err := img.Read(pc, n)
	if err != nil {
		return nil, err
	}
	decoded, err := bitplane.Decode(b)
	if err != nil {
		return nil, err
	}
	tiles = append(tiles, decoded...)
	for i := 0; i < (halfRow-n)/bitplane.TileBytes; i++ {
		tiles = append(tiles, bitplane.Tile{})
	}
	return tiles, nil
}

// assemble lays out the two DMA transfers as two rows of 16 tiles, the top
// half of the sprite on the left and the bottom half on the right
func assemble(img *rom.Image, top, bottom dmaEntry) ([]bitplane.Tile, error) {
	tiles := make([]bitplane.Tile, 0, 2*halfRow*2/bitplane.TileBytes)

	var err error
	for _, chunk := range []struct{ pc, n int }{
		{top.pc, top.part1},
		{bottom.pc, bottom.part1},
		{top.pc + top.part1, top.part2},
		{bottom.pc + bottom.part1, bottom.part2},
	} {
		if tiles, err = appendTiles(img, tiles, chunk.pc, chunk.n); err != nil {
			return nil, err
		}
	}

	return tiles, nil
}

// Graphics returns the decoded tiles each of the n frames of pose id draws
// from
func Graphics(img *rom.Image, id, n int) ([][]bitplane.Tile, error) {
	pc, err := lookup(img, ProgressionTable, ProgressionBase, id)
	if err != nil {
		return nil, err
	}

	progression, err := img.Read(pc, n*progressionSize)
	if err != nil {
		return nil, err
	}

	graphics := make([][]bitplane.Tile, n)
	for i := range graphics {
		p := progression[i*progressionSize : (i+1)*progressionSize]

		if p[0] > maxTopDMA {
			return nil, fmt.Errorf("%w: frame %d top table 0x%02X", ErrDMATable, i, p[0])
		}
		if p[2] > maxBottomDMA {
			return nil, fmt.Errorf("%w: frame %d bottom table 0x%02X", ErrDMATable, i, p[2])
		}

		top, err := readDMA(img, TopDMATable, p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("frame %d top: %w", i, err)
		}
		bottom, err := readDMA(img, BottomDMATable, p[2], p[3])
		if err != nil {
			return nil, fmt.Errorf("frame %d bottom: %w", i, err)
		}

		if graphics[i], err = assemble(img, top, bottom); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	return graphics, nil
}
