package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/smsprite"
	"github.com/bodgit/smsprite/enemy"
	"github.com/bodgit/smsprite/posetable"
	"github.com/bodgit/smsprite/rom"
	"github.com/bodgit/smsprite/samus"
	"github.com/bodgit/smsprite/sprite"
	"github.com/urfave/cli/v2"
)

const defaultDB = "smsprite.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openROM(c *cli.Context) (*rom.Image, error) {
	file := c.String("rom")
	if c.NArg() > 0 && c.Command.Name == "import" {
		file = c.Args().First()
	}
	if file == "" {
		return nil, errors.New("no cartridge image given")
	}
	return rom.Open(file)
}

// source returns the CRC identifying the stored poses to use, either given
// directly or computed from the cartridge image
func source(c *cli.Context) (string, error) {
	if crc := c.String("crc"); crc != "" {
		return strings.ToUpper(crc), nil
	}
	img, err := openROM(c)
	if err != nil {
		return "", err
	}
	return img.CRC32(), nil
}

func parseID(s string) (int, error) {
	id, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return 0, err
	}
	if id < 0 || id > 0xFF {
		return 0, fmt.Errorf("pose id %s out of range", s)
	}
	return int(id), nil
}

func parseIDs(list []string) ([]int, error) {
	if len(list) == 0 {
		return samus.IDs(), nil
	}
	ids := make([]int, 0, len(list))
	for _, s := range list {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeFile(file string, write func(*os.File) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}

	return f.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "smsprite"
	app.Usage = "Super Metroid sprite extraction utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	crcFlag := &cli.StringFlag{
		Name:  "crc",
		Usage: "CRC-32 of the stored image to use instead of reading --rom",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SMSPRITE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:    "rom",
			EnvVars: []string{"SMSPRITE_ROM"},
			Usage:   "path to cartridge image",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Decode poses from a cartridge image into the database",
			Description: "",
			ArgsUsage:   "[FILE]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: smsprite.DefaultWorkers,
					Usage: "number of poses to decode concurrently",
				},
				&cli.StringSliceFlag{
					Name:  "pose",
					Usage: "pose id to decode, may be repeated; defaults to every known pose",
				},
			},
			Action: func(c *cli.Context) error {
				logger := newLogger(c)

				img, err := openROM(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				ids, err := parseIDs(c.StringSlice("pose"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				l, err := smsprite.Open(c.String("db"), logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				crc, err := l.Import(context.Background(), img, ids, c.Int("workers"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Fprintf(c.App.Writer, "Imported %d poses from %s\n", len(ids), crc)

				return nil
			},
		},
		{
			Name:        "export",
			Usage:       "Write stored poses to a pose table file",
			Description: "",
			ArgsUsage:   "[FILE]",
			Flags:       []cli.Flag{crcFlag},
			Action: func(c *cli.Context) error {
				logger := newLogger(c)

				crc, err := source(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				file := posetable.Filename
				if c.NArg() > 0 {
					file = c.Args().First()
				}

				l, err := smsprite.Open(c.String("db"), logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				if err := writeFile(file, func(f *os.File) error {
					return l.Export(crc, f)
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "gif",
			Usage:       "Render a stored pose as an animated GIF",
			Description: "",
			ArgsUsage:   "POSE FILE",
			Flags: []cli.Flag{
				crcFlag,
				&cli.IntFlag{
					Name:  "scale",
					Value: 2,
					Usage: "enlarge each pixel this many times",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				id, err := parseID(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				crc, err := source(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				l, err := smsprite.Open(c.String("db"), logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				if err := writeFile(c.Args().Get(1), func(f *os.File) error {
					return l.GIF(crc, id, c.Int("scale"), f)
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List stored images, or the poses stored for one",
			Description: "",
			Flags:       []cli.Flag{crcFlag},
			Action: func(c *cli.Context) error {
				logger := newLogger(c)

				l, err := smsprite.Open(c.String("db"), logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				db := l.DB()

				if c.String("crc") == "" && c.String("rom") == "" {
					crcs, err := db.ROMs()
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					for _, crc := range crcs {
						r, err := db.ROM(crc)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						fmt.Fprintf(c.App.Writer, "%s\t%d poses\t%d frames\tvalid=%t\n", r.CRC, r.Poses, r.Frames, r.Valid)
					}
					return nil
				}

				crc, err := source(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				t, err := db.Load(crc)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, id := range t.IDs() {
					p, _ := t.Pose(id)
					fmt.Fprintf(c.App.Writer, "0x%02X\t%-40s\t%d frames\t%s\n", p.ID, p.Name, p.Len(), p.Terminator)
					for _, tr := range p.Transitions {
						fmt.Fprintf(c.App.Writer, "\t%s -> 0x%02X\n", tr.Input, tr.To)
					}
				}

				return nil
			},
		},
		{
			Name:        "enemy",
			Usage:       "Render an enemy from the cartridge image as an animated GIF",
			Description: "",
			ArgsUsage:   "NAME FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "scale",
					Value: 2,
					Usage: "enlarge each pixel this many times",
				},
				&cli.StringFlag{
					Name:  "sheet",
					Usage: "also write the enemy tiles and palette as a sheet to this file",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				a, ok := enemy.Known[strings.ToLower(c.Args().Get(0))]
				if !ok {
					return cli.NewExitError(fmt.Errorf("unknown enemy %s", c.Args().Get(0)), 1)
				}

				img, err := openROM(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				dna, err := enemy.Read(img, a)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				logger.Println(dna)

				colours, err := dna.Colours()
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				p := sprite.Palette(colours)

				frames, err := dna.Composite()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := writeFile(c.Args().Get(1), func(f *os.File) error {
					return sprite.EncodeGIF(f, frames, p, c.Int("scale"))
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				if file := c.String("sheet"); file != "" {
					tiles, err := dna.Tiles()
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					if err := writeFile(file, func(f *os.File) error {
						return sprite.EncodeSheet(f, sprite.Sheet(tiles, p))
					}); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "sheet",
			Usage:       "Convert between raw sprite sheets and PNG",
			Description: "",
			Subcommands: []*cli.Command{
				{
					Name:      "decode",
					Usage:     "Write a raw sheet as a PNG",
					ArgsUsage: "SHEET PNG",
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}
						if err := convertFile(c.Args().Get(0), c.Args().Get(1), sheetToPNG); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
				{
					Name:      "encode",
					Usage:     "Write a PNG as a raw sheet",
					ArgsUsage: "PNG SHEET",
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}
						if err := convertFile(c.Args().Get(0), c.Args().Get(1), pngToSheet); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
