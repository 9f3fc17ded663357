/*
Package smsprite is a library for extracting the animated player sprite
from a Super Metroid cartridge image and storing it for later playback.
*/
package smsprite

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/bodgit/smsprite/checksum"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/posetable"
	"github.com/bodgit/smsprite/rom"
	"github.com/bodgit/smsprite/samus"
	"github.com/bodgit/smsprite/sprite"
)

// Library ties decoding cartridge images to a PoseDB
type Library struct {
	db     *PoseDB
	logger *log.Logger
}

// New returns a Library storing poses in db
func New(db *PoseDB, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Library{
		db:     db,
		logger: logger,
	}
}

// Open returns a Library storing poses in the database file
func Open(file string, logger *log.Logger) (*Library, error) {
	db, err := NewPoseDB(file, logger)
	if err != nil {
		return nil, err
	}
	return New(db, logger), nil
}

// Close closes the underlying database
func (l *Library) Close() error {
	return l.db.Close()
}

// DB returns the underlying database
func (l *Library) DB() *PoseDB {
	return l.db
}

// Import decodes the poses ids from img and stores them, replacing anything
// stored for the same image before. It returns the CRC the poses are stored
// under.
func (l *Library) Import(ctx context.Context, img *rom.Image, ids []int, workers int) (string, error) {
	crc := img.CRC32()

	valid, err := checksum.Verify(img.Bytes())
	if err != nil {
		return "", err
	}
	if !valid {
		l.logger.Printf("Image %s has a bad checksum, it may be modified\n", crc)
	}

	palette, err := samus.Palette(img)
	if err != nil {
		return "", err
	}

	t, err := l.Extract(ctx, img, ids, workers)
	if err != nil {
		return "", err
	}

	r := ROM{
		CRC:      crc,
		Valid:    valid,
		Palette:  palette,
		Checksum: img.Checksum(),
	}
	if err := l.db.Store(r, t); err != nil {
		return "", err
	}

	return crc, nil
}

// Export writes the poses stored for crc to w as a pose table
func (l *Library) Export(crc string, w io.Writer) error {
	t, err := l.db.Load(crc)
	if err != nil {
		return err
	}

	b, err := posetable.Wrap(t, crc).MarshalBinary()
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}

// GIF writes pose id stored for crc to w as an animated GIF, playing each
// frame once in order
func (l *Library) GIF(crc string, id, scale int, w io.Writer) error {
	r, err := l.db.ROM(crc)
	if err != nil {
		return err
	}

	if err := l.db.Use(crc); err != nil {
		return err
	}

	p, ok := l.db.Pose(id)
	if !ok {
		return fmt.Errorf("smsprite: pose 0x%02X not stored for %s", id, crc)
	}

	frames := make([]*framemap.Frame, 0, p.Len())
	for _, i := range p.Frames {
		f := l.db.Frame(i)
		if f == nil {
			return fmt.Errorf("smsprite: frame %d of pose 0x%02X not stored", i, id)
		}
		frames = append(frames, f)
	}

	return sprite.EncodeGIF(w, frames, sprite.Palette(r.Palette), scale)
}
