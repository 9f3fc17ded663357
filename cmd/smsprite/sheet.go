package main

import (
	"image/png"
	"io"
	"os"

	"github.com/bodgit/smsprite/sprite"
)

// sheetToPNG converts a raw sheet to a PNG so it can be edited
func sheetToPNG(r io.Reader, w io.Writer) error {
	m, err := sprite.DecodeSheet(r)
	if err != nil {
		return err
	}
	return png.Encode(w, m)
}

// pngToSheet converts an edited PNG back into a raw sheet, reducing it to
// 16 colours if needed
func pngToSheet(r io.Reader, w io.Writer) error {
	m, err := png.Decode(r)
	if err != nil {
		return err
	}
	return sprite.EncodeSheet(w, m)
}

func convertFile(in, out string, convert func(io.Reader, io.Writer) error) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeFile(out, func(w *os.File) error {
		return convert(f, w)
	})
}
