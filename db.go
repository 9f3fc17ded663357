package smsprite

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"sync"

	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/pose"
	_ "github.com/mattn/go-sqlite3"
)

// ErrUnknownROM is returned when no poses are stored for an image
var ErrUnknownROM = errors.New("smsprite: no poses stored for image")

// ROM describes an image poses have been stored for
type ROM struct {
	CRC      string
	Valid    bool
	Poses    int
	Frames   int
	Palette  []uint16
	Checksum uint16
}

// PoseDB stores decoded pose tables keyed by the CRC-32 of the image they
// were decoded from. Once Use has selected an image it also serves as a
// pose.Repository, loading poses and frames on demand.
type PoseDB struct {
	db     *sql.DB
	logger *log.Logger

	mu     sync.Mutex
	rom    int64
	poses  map[int]*pose.Pose
	frames map[int]*framemap.Frame
}

var _ pose.Repository = (*PoseDB)(nil)

// NewPoseDB opens or creates the database in file
func NewPoseDB(file string, logger *log.Logger) (*PoseDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS rom (id INTEGER PRIMARY KEY NOT NULL, crc TEXT NOT NULL UNIQUE, valid INTEGER NOT NULL, checksum INTEGER NOT NULL, palette BLOB)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS frame (rom_id INTEGER NOT NULL, idx INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, zero_x INTEGER NOT NULL, zero_y INTEGER NOT NULL, duration INTEGER NOT NULL, buffer BLOB, PRIMARY KEY (rom_id, idx), FOREIGN KEY(rom_id) REFERENCES rom(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS pose (rom_id INTEGER NOT NULL, pose_id INTEGER NOT NULL, name TEXT NOT NULL, kind INTEGER NOT NULL, arg INTEGER NOT NULL, frames BLOB, durations BLOB, PRIMARY KEY (rom_id, pose_id), FOREIGN KEY(rom_id) REFERENCES rom(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS transition (rom_id INTEGER NOT NULL, pose_id INTEGER NOT NULL, seq INTEGER NOT NULL, input INTEGER NOT NULL, to_pose INTEGER NOT NULL, PRIMARY KEY (rom_id, pose_id, seq), FOREIGN KEY(rom_id, pose_id) REFERENCES pose(rom_id, pose_id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	return &PoseDB{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database
func (db *PoseDB) Close() error {
	return db.db.Close()
}

func encodeInts(v []int) []byte {
	b := make([]byte, len(v)*4)
	for i, n := range v {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(n))
	}
	return b
}

func decodeInts(b []byte) []int {
	v := make([]int, len(b)/4)
	for i := range v {
		v[i] = int(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func encodeColours(colours []uint16) []byte {
	b := make([]byte, 2*len(colours))
	for i, c := range colours {
		binary.LittleEndian.PutUint16(b[2*i:], c)
	}
	return b
}

func decodeColours(b []byte) []uint16 {
	colours := make([]uint16, len(b)/2)
	for i := range colours {
		colours[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return colours
}

// Store replaces everything stored for the image identified by r.CRC with t
func (db *PoseDB) Store(r ROM, t *pose.Table) (err error) {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.Exec("DELETE FROM rom WHERE crc = ?", r.CRC); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO rom (crc, valid, checksum, palette) VALUES (?, ?, ?, ?)", r.CRC, r.Valid, r.Checksum, encodeColours(r.Palette))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i := 0; i < t.Frames(); i++ {
		f := t.Frame(i)
		if _, err = tx.Exec("INSERT OR REPLACE INTO frame (rom_id, idx, width, height, zero_x, zero_y, duration, buffer) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", id, i, f.Width, f.Height, f.ZeroX, f.ZeroY, f.Duration, f.Buffer); err != nil {
			return err
		}
	}

	for _, pid := range t.IDs() {
		p, _ := t.Pose(pid)
		if _, err = tx.Exec("INSERT OR REPLACE INTO pose (rom_id, pose_id, name, kind, arg, frames, durations) VALUES (?, ?, ?, ?, ?, ?, ?)", id, p.ID, p.Name, p.Terminator.Kind, p.Terminator.Arg, encodeInts(p.Frames), p.Durations); err != nil {
			return err
		}
		for seq, tr := range p.Transitions {
			if _, err = tx.Exec("INSERT OR REPLACE INTO transition (rom_id, pose_id, seq, input, to_pose) VALUES (?, ?, ?, ?, ?)", id, p.ID, seq, tr.Input.Bits(), tr.To); err != nil {
				return err
			}
		}
	}

	db.logger.Printf("Stored %d poses and %d frames for %s\n", len(t.IDs()), t.Frames(), r.CRC)

	return nil
}

func (db *PoseDB) romID(crc string) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM rom WHERE crc = ?", crc).Scan(&id); err {
	case sql.ErrNoRows:
		return 0, fmt.Errorf("%w: %s", ErrUnknownROM, crc)
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// ROM returns what is stored for the image with the given CRC
func (db *PoseDB) ROM(crc string) (*ROM, error) {
	r := &ROM{CRC: crc}
	var palette []byte
	switch err := db.db.QueryRow("SELECT r.valid, r.checksum, r.palette, (SELECT COUNT(*) FROM pose AS p WHERE p.rom_id = r.id), (SELECT COUNT(*) FROM frame AS f WHERE f.rom_id = r.id) FROM rom AS r WHERE r.crc = ?", crc).Scan(&r.Valid, &r.Checksum, &palette, &r.Poses, &r.Frames); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("%w: %s", ErrUnknownROM, crc)
	case nil:
		r.Palette = decodeColours(palette)
		return r, nil
	default:
		return nil, err
	}
}

// ROMs returns the CRC of every stored image
func (db *PoseDB) ROMs() ([]string, error) {
	rows, err := db.db.Query("SELECT crc FROM rom ORDER BY crc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crcs []string
	for rows.Next() {
		var crc string
		if err := rows.Scan(&crc); err != nil {
			return nil, err
		}
		crcs = append(crcs, crc)
	}
	return crcs, rows.Err()
}

func (db *PoseDB) loadFrame(rom int64, idx int) (*framemap.Frame, error) {
	f := new(framemap.Frame)
	switch err := db.db.QueryRow("SELECT width, height, zero_x, zero_y, duration, buffer FROM frame WHERE rom_id = ? AND idx = ?", rom, idx).Scan(&f.Width, &f.Height, &f.ZeroX, &f.ZeroY, &f.Duration, &f.Buffer); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("smsprite: frame %d not stored", idx)
	case nil:
		return f, nil
	default:
		return nil, err
	}
}

func (db *PoseDB) loadTransitions(rom int64, id int) ([]pose.Transition, error) {
	rows, err := db.db.Query("SELECT input, to_pose FROM transition WHERE rom_id = ? AND pose_id = ? ORDER BY seq", rom, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []pose.Transition
	for rows.Next() {
		var input uint16
		var to int
		if err := rows.Scan(&input, &to); err != nil {
			return nil, err
		}
		transitions = append(transitions, pose.Transition{Input: controller.FromBitsTruncate(input), To: to})
	}
	return transitions, rows.Err()
}

// loadPose returns pose id, or nil if it is not stored
func (db *PoseDB) loadPose(rom int64, id int) (*pose.Pose, error) {
	var name string
	var kind, arg uint8
	var frames, durations []byte
	switch err := db.db.QueryRow("SELECT name, kind, arg, frames, durations FROM pose WHERE rom_id = ? AND pose_id = ?", rom, id).Scan(&name, &kind, &arg, &frames, &durations); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	transitions, err := db.loadTransitions(rom, id)
	if err != nil {
		return nil, err
	}

	if durations == nil {
		durations = []byte{}
	}

	return pose.New(id, name, decodeInts(frames), durations, pose.Terminator{Kind: pose.Kind(kind), Arg: arg}, transitions)
}

func (db *PoseDB) poseIDs(rom int64) ([]int, error) {
	rows, err := db.db.Query("SELECT pose_id FROM pose WHERE rom_id = ? ORDER BY pose_id", rom)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Load returns the whole pose table stored for the image with the given CRC
func (db *PoseDB) Load(crc string) (*pose.Table, error) {
	rom, err := db.romID(crc)
	if err != nil {
		return nil, err
	}

	t := pose.NewTable()

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM frame WHERE rom_id = ?", rom).Scan(&count); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		f, err := db.loadFrame(rom, i)
		if err != nil {
			return nil, err
		}
		t.AddFrame(*f)
	}

	ids, err := db.poseIDs(rom)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		p, err := db.loadPose(rom, id)
		if err != nil {
			return nil, err
		}
		if err := t.Add(p); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Use selects the image the Repository methods serve poses from
func (db *PoseDB) Use(crc string) error {
	rom, err := db.romID(crc)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.rom = rom
	db.poses = make(map[int]*pose.Pose)
	db.frames = make(map[int]*framemap.Frame)

	return nil
}

// Pose implements pose.Repository
func (db *PoseDB) Pose(id int) (*pose.Pose, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.poses == nil {
		return nil, false
	}
	if p, ok := db.poses[id]; ok {
		return p, p != nil
	}

	p, err := db.loadPose(db.rom, id)
	if err != nil {
		db.logger.Printf("Unable to load pose 0x%02X: %s\n", id, err)
		return nil, false
	}
	db.poses[id] = p
	return p, p != nil
}

// Frame implements pose.Repository
func (db *PoseDB) Frame(i int) *framemap.Frame {
	db.mu.Lock()
	defer db.mu.Unlock()

	if f, ok := db.frames[i]; ok {
		return f
	}

	f, err := db.loadFrame(db.rom, i)
	if err != nil {
		db.logger.Printf("Unable to load frame %d: %s\n", i, err)
		return nil
	}
	db.frames[i] = f
	return f
}
