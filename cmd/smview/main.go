package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bodgit/smsprite"
	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/machine"
	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/posetable"
	"github.com/bodgit/smsprite/rom"
	"github.com/bodgit/smsprite/samus"
	"github.com/bodgit/smsprite/sprite"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/urfave/cli/v2"
)

const (
	screenWidth  = 256
	screenHeight = 224
	defaultDB    = "smsprite.db"
)

var keys = []struct {
	key   ebiten.Key
	input controller.Input
}{
	{ebiten.KeyArrowLeft, controller.Left},
	{ebiten.KeyArrowRight, controller.Right},
	{ebiten.KeyArrowUp, controller.Up},
	{ebiten.KeyArrowDown, controller.Down},
	{ebiten.KeySpace, controller.Jump},
	{ebiten.KeyZ, controller.Shoot},
	{ebiten.KeyA, controller.DiagonalUp},
	{ebiten.KeyS, controller.DiagonalDown},
	{ebiten.KeyShift, controller.Run},
}

type game struct {
	player  *player
	palette color.Palette
	images  map[*framemap.Frame]*ebiten.Image
	frame   *framemap.Frame
}

func (g *game) Update() error {
	input := controller.Empty
	for _, k := range keys {
		input = input.Set(k.input, ebiten.IsKeyPressed(k.key))
	}

	cmd := commandNone
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		cmd = commandFall
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		cmd = commandLand
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	}

	f, err := g.player.tick(input, cmd)
	if err != nil {
		return err
	}
	g.frame = f

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		img, ok := g.images[g.frame]
		if !ok {
			img = ebiten.NewImageFromImage(sprite.Image(g.frame, g.palette))
			g.images[g.frame] = img
		}

		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
		op.GeoM.Translate(float64(screenWidth/2-int(g.frame.ZeroX)), float64(screenHeight/2-int(g.frame.ZeroY)))
		screen.DrawImage(img, op)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("0x%02X %s\n%s", g.player.m.PoseID(), g.player.m.PoseName(), g.player.m.CurrentInput()))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// load returns the poses and palette to show, either from a pose table file
// or from the database
func load(c *cli.Context, logger *log.Logger) (pose.Repository, []uint16, func() error, error) {
	if file := c.String("table"); file != "" {
		b, err := ioutil.ReadFile(file)
		if err != nil {
			return nil, nil, nil, err
		}
		t := posetable.New()
		if err := t.UnmarshalBinary(b); err != nil {
			return nil, nil, nil, err
		}

		// The table carries no palette so it comes from the image
		img, err := rom.Open(c.String("rom"))
		if err != nil {
			return nil, nil, nil, err
		}
		palette, err := samus.Palette(img)
		if err != nil {
			return nil, nil, nil, err
		}

		return t, palette, func() error { return nil }, nil
	}

	crc := c.String("crc")
	if crc == "" {
		if c.String("rom") == "" {
			return nil, nil, nil, errors.New("one of --table, --crc or --rom is needed")
		}
		img, err := rom.Open(c.String("rom"))
		if err != nil {
			return nil, nil, nil, err
		}
		crc = img.CRC32()
	}

	db, err := smsprite.NewPoseDB(c.String("db"), logger)
	if err != nil {
		return nil, nil, nil, err
	}

	r, err := db.ROM(crc)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := db.Use(crc); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return db, r.Palette, db.Close, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "smview"
	app.Usage = "Play Super Metroid player poses from the keyboard"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
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
		&cli.StringFlag{
			Name:  "crc",
			Usage: "CRC-32 of the stored image to use instead of reading --rom",
		},
		&cli.StringFlag{
			Name:  "table",
			Usage: "path to a pose table file to use instead of the database",
		},
		&cli.StringFlag{
			Name:  "pose",
			Value: "0x01",
			Usage: "initial pose id",
		},
		&cli.IntFlag{
			Name:  "scale",
			Value: 3,
			Usage: "window scale",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		logger := log.New(ioutil.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		initial, err := strconv.ParseInt(c.String("pose"), 0, 16)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		repo, palette, closer, err := load(c, logger)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer closer()

		m, err := machine.New(int(initial), repo, machine.WithLogger(logger))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		ebiten.SetWindowSize(screenWidth*c.Int("scale"), screenHeight*c.Int("scale"))
		ebiten.SetWindowTitle("smview")

		g := &game{
			player:  newPlayer(m),
			palette: sprite.Palette(palette),
			images:  make(map[*framemap.Frame]*ebiten.Image),
		}

		if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
			return cli.NewExitError(err, 1)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
