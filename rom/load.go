package rom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"io/ioutil"
	"os"

	"github.com/bodgit/smsprite/checksum"
)

const (
	copierHeader = 512
	blockSize    = 1024
)

// Load reads a whole cartridge image from r, dropping the 512 byte header
// prepended by some copier devices
func Load(r io.Reader) (*Image, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(b)%blockSize == copierHeader {
		b = b[copierHeader:]
	}

	if len(b) < bankWindow {
		return nil, fmt.Errorf("rom: image too small (%d bytes)", len(b))
	}

	return New(b), nil
}

// Open loads the cartridge image stored in file
func Open(file string) (*Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// CRC32 returns the IEEE CRC-32 of the image, without any copier header, as
// an upper case hex string
func (img *Image) CRC32() string {
	h := crc32.NewIEEE()
	_, _ = io.Copy(h, bytes.NewReader(img.b))
	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil))
}

// Checksum returns the checksum of the image as the cartridge header stores
// it
func (img *Image) Checksum() uint16 {
	h := checksum.New()
	_, _ = io.Copy(h, bytes.NewReader(img.b))
	return binary.LittleEndian.Uint16(h.Sum(nil))
}
