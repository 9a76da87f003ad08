package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// fieldSeparator joins note fields in the notes.flds column.
const fieldSeparator = "\x1f"

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName string
	deckID   int64
	modelID  int64
	cards    []Card
	now      func() time.Time

	// media maps the in-package file name to its numbered entry
	media map[string]int
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName: deckName,
		deckID:   now,
		modelID:  now + 1,
		now:      time.Now,
		media:    make(map[string]int),
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG creates an .apkg file
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	if len(g.cards) == 0 {
		return fmt.Errorf("no cards to export")
	}

	tempDir, err := os.MkdirTemp("", "wordsmith_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Media must be collected before the notes reference it.
	audio, err := g.collectMedia(tempDir)
	if err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}
	if err := g.writeMediaIndex(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}
	if err := g.createDatabase(filepath.Join(tempDir, "collection.anki2"), audio); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if err := zipDir(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

// collectMedia copies audio files into dir under numeric names and returns
// the in-package name per card index.
func (g *APKGGenerator) collectMedia(dir string) (map[int]string, error) {
	names := make(map[int]string)
	sources := make(map[string]string) // in-package name -> source path

	for i, card := range g.cards {
		if card.AudioFile == "" || !fileExists(card.AudioFile) {
			continue
		}

		name := filepath.Base(card.AudioFile)
		if src, taken := sources[name]; taken && src != card.AudioFile {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
		}
		if _, done := g.media[name]; !done {
			num := len(g.media)
			if err := copyFile(card.AudioFile, filepath.Join(dir, strconv.Itoa(num))); err != nil {
				return nil, fmt.Errorf("failed to copy audio file %s: %w", card.AudioFile, err)
			}
			g.media[name] = num
			sources[name] = card.AudioFile
		}
		names[i] = name
	}
	return names, nil
}

// writeMediaIndex writes the "media" file mapping entry numbers to names.
func (g *APKGGenerator) writeMediaIndex(dir string) error {
	index := make(map[string]string, len(g.media))
	for name, num := range g.media {
		index[strconv.Itoa(num)] = name
	}
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "media"), data, 0644)
}

func (g *APKGGenerator) createDatabase(dbPath string, audio map[int]string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := g.insertNotes(tx, audio); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

type deck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Mod              int64  `json:"mod"`
	Desc             string `json:"desc"`
	Collapsed        bool   `json:"collapsed"`
	Dyn              int    `json:"dyn"`
	Conf             int    `json:"conf"`
	USN              int    `json:"usn"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
}

func newDeck(id int64, name, desc string, mod int64) deck {
	return deck{ID: id, Name: name, Desc: desc, Mod: mod, Conf: 1, ExtendNew: 10, ExtendRev: 50}
}

type field struct {
	Name  string   `json:"name"`
	Ord   int      `json:"ord"`
	Font  string   `json:"font"`
	Size  int      `json:"size"`
	Media []string `json:"media"`
}

type template struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	Did   *int64 `json:"did"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
}

type noteType struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      int        `json:"type"`
	Mod       int64      `json:"mod"`
	USN       int        `json:"usn"`
	SortF     int        `json:"sortf"`
	Did       int64      `json:"did"`
	Req       [][]any    `json:"req"`
	Vers      []int      `json:"vers"`
	Tags      []string   `json:"tags"`
	LatexPre  string     `json:"latexPre"`
	LatexPost string     `json:"latexPost"`
	Flds      []field    `json:"flds"`
	Tmpls     []template `json:"tmpls"`
	CSS       string     `json:"css"`
}

var noteFields = []string{"Word", "Definition", "Audio", "Notes"}

func (g *APKGGenerator) noteType(mod int64) noteType {
	flds := make([]field, len(noteFields))
	for i, name := range noteFields {
		flds[i] = field{Name: name, Ord: i, Font: "Arial", Size: 20, Media: []string{}}
	}
	flds[len(flds)-1].Size = 16

	return noteType{
		ID:        g.modelID,
		Name:      "Vocabulary from wordsmith (Basic + Reverse)",
		Mod:       mod,
		USN:       -1,
		Did:       g.deckID,
		Req:       [][]any{{0, "all", []int{0}}, {1, "all", []int{1}}},
		Vers:      []int{},
		Tags:      []string{},
		LatexPre:  `\documentclass[12pt]{article}\begin{document}`,
		LatexPost: `\end{document}`,
		Flds:      flds,
		Tmpls: []template{
			{Name: "Forward", Ord: 0, QFmt: forwardFront, AFmt: forwardBack},
			{Name: "Reverse", Ord: 1, QFmt: reverseFront, AFmt: reverseBack},
		},
		CSS: cardCSS,
	}
}

const forwardFront = `<div class="word">{{Word}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}`

const forwardBack = `{{FrontSide}}
<hr id="answer">
<div class="definition">{{Definition}}</div>
{{#Notes}}<div class="notes">{{Notes}}</div>{{/Notes}}`

const reverseFront = `<div class="definition">{{Definition}}</div>`

const reverseBack = `{{FrontSide}}
<hr id="answer">
<div class="word">{{Word}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
{{#Notes}}<div class="notes">{{Notes}}</div>{{/Notes}}`

const cardCSS = `.card { font-family: Arial, sans-serif; font-size: 20px; text-align: center; color: #333; background-color: white; }
.word { font-size: 32px; font-weight: bold; color: #2c3e50; margin: 20px 0; }
.definition { font-size: 22px; margin: 20px 0; }
.audio { margin: 15px 0; }
.notes { font-size: 16px; color: #7f8c8d; margin-top: 20px; font-style: italic; }
hr#answer { margin: 30px 0; border: 0; border-top: 1px solid #ecf0f1; }`

func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := g.now().Unix()

	decks := map[string]deck{
		"1":                             newDeck(1, "Default", "", now),
		strconv.FormatInt(g.deckID, 10): newDeck(g.deckID, g.deckName, "Vocabulary exported by wordsmith", now),
	}
	models := map[string]noteType{strconv.FormatInt(g.modelID, 10): g.noteType(now)}
	conf := map[string]any{
		"nextPos":      1,
		"estTimes":     true,
		"activeDecks":  []int64{1},
		"sortType":     "noteFld",
		"addToCur":     true,
		"curDeck":      1,
		"dueCounts":    true,
		"collapseTime": 1200,
		"schedVer":     1,
		"curModel":     strconv.FormatInt(g.modelID, 10),
	}
	dconf := map[string]any{
		"1": map[string]any{
			"id": 1, "name": "Default", "dyn": 0, "usn": 0, "mod": now,
			"maxTaken": 60, "autoplay": true, "replayq": true, "timer": 0,
			"new":   map[string]any{"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500, "perDay": 20, "order": 1, "bury": true, "separate": true},
			"lapse": map[string]any{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
			"rev":   map[string]any{"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500, "ivlFct": 1, "bury": true, "minSpace": 1},
		},
	}

	blobs := make([]string, 0, 4)
	for _, v := range []any{conf, models, decks, dconf} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		blobs = append(blobs, string(data))
	}

	// ver 11 is the schema version Anki 2.1 imports without upgrade.
	_, err := db.Exec(`INSERT INTO col VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		now, now*1000, now*1000, blobs[0], blobs[1], blobs[2], blobs[3])
	return err
}

func (g *APKGGenerator) insertNotes(tx *sql.Tx, audio map[int]string) error {
	now := g.now()
	base := now.UnixMilli()

	for i, card := range g.cards {
		// Three ids per note: the note plus its two cards.
		noteID := base + int64(i*3)

		sound := ""
		if name, ok := audio[i]; ok {
			sound = soundField(name)
		}
		flds := strings.Join([]string{card.Word, card.Definition, sound, card.Notes}, fieldSeparator)

		_, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
			noteID, noteGUID(card.Word), g.modelID, now.Unix(), flds, card.Word, checksum(card.Word))
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		for ord := 0; ord < 2; ord++ {
			_, err := tx.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
				noteID+1+int64(ord), noteID, g.deckID, ord, now.Unix(), noteID+int64(ord))
			if err != nil {
				return fmt.Errorf("failed to insert card %d of %q: %w", ord, card.Word, err)
			}
		}
	}
	return nil
}

// noteGUID is stable per word so re-importing updates instead of doubling.
func noteGUID(word string) string {
	sum := sha1.Sum([]byte("wordsmith:" + strings.ToLower(word)))
	return fmt.Sprintf("ws_%x", sum[:8])
}

// checksum is Anki's csum: the first 8 hex digits of sha1(sort field).
func checksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func zipDir(dir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	archive := zip.NewWriter(out)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addToZip(archive, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			return err
		}
	}
	return archive.Close()
}

func addToZip(archive *zip.Writer, path, name string) error {
	w, err := archive.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
