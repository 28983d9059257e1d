// Package memory holds the long-term, cross-run journal: glossary terms,
// found notes and past oracle decisions. It outlives any single day's map and
// has an explicit open/close lifecycle rather than living in a global.
package memory

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

var (
	termsBucket     = []byte("terms")
	notesBucket     = []byte("notes")
	decisionsBucket = []byte("decisions")
)

// Term is one glossary entry.
type Term struct {
	Key        string `yaml:"key"`
	Definition string `yaml:"definition"`
}

// Note is a captured in-game note, deduplicated by content hash.
type Note struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	FoundIn string `yaml:"found_in_room"`
	Color   string `yaml:"color"`
	Hash    string `yaml:"hash"`
}

// Decision is one recorded oracle choice, kept so a restarted process can
// recover what was last asked for.
type Decision struct {
	Action      string `yaml:"action"`
	Room        string `yaml:"room,omitempty"`
	Door        string `yaml:"door_direction,omitempty"`
	Explanation string `yaml:"explanation,omitempty"`
}

// Journal is a BoltDB-backed memory store.
type Journal struct {
	db *bbolt.DB
}

// Open opens (or creates) the journal at path and seeds the intro note.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("memory path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	j := &Journal{db: db}
	if err := j.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := j.AddNote(introNote()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) ensureBuckets() error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{termsBucket, notesBucket, decisionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// PutTerm records a glossary term. Re-putting an existing term updates its
// definition; it never duplicates.
func (j *Journal) PutTerm(term, definition string) error {
	key := strings.ToUpper(strings.TrimSpace(term))
	if key == "" {
		return fmt.Errorf("term key is required")
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(termsBucket).Put([]byte(key), []byte(definition))
	})
}

// Terms returns all glossary entries in key order.
func (j *Journal) Terms() ([]Term, error) {
	var terms []Term
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(termsBucket).ForEach(func(k, v []byte) error {
			terms = append(terms, Term{Key: string(k), Definition: string(v)})
			return nil
		})
	})
	return terms, err
}

// AddNote stores a note unless one with the same content hash exists.
func (j *Journal) AddNote(n Note) error {
	if n.Hash == "" {
		n.Hash = HashContent(n.Content)
	}
	payload, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(notesBucket)
		if bucket.Get([]byte(n.Hash)) != nil {
			return nil
		}
		return bucket.Put([]byte(n.Hash), payload)
	})
}

// Notes returns all stored notes.
func (j *Journal) Notes() ([]Note, error) {
	var notes []Note
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(notesBucket).ForEach(func(_, v []byte) error {
			var n Note
			if err := yaml.Unmarshal(v, &n); err != nil {
				return fmt.Errorf("unmarshal note: %w", err)
			}
			notes = append(notes, n)
			return nil
		})
	})
	return notes, err
}

// AddDecision appends a decision record in arrival order.
func (j *Journal) AddDecision(d Decision) error {
	payload, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(decisionsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, payload)
	})
}

// LastDoorDecision returns the most recent decision that opened a door, if
// any. Used to rebuild drafting context after a process restart.
func (j *Journal) LastDoorDecision() (Decision, bool, error) {
	var (
		found    bool
		decision Decision
	)
	err := j.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(decisionsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var d Decision
			if err := yaml.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("unmarshal decision: %w", err)
			}
			if d.Door != "" {
				decision, found = d, true
				return nil
			}
		}
		return nil
	})
	return decision, found, err
}

// Reset clears all buckets for a completely fresh run, then reseeds the
// intro note.
func (j *Journal) Reset() error {
	err := j.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{termsBucket, notesBucket, decisionsBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset memory: %w", err)
	}
	return j.AddNote(introNote())
}

// HashContent fingerprints note content for deduplication.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func introNote() Note {
	return Note{
		Title:   "Intro Monologue",
		FoundIn: "N/A",
		Color:   "N/A",
		Content: "I, Herbert S. Sinclair, of the Mount Holly Estate at Reddington,\n" +
			"do publish, and declare, this instrument,\n" +
			"my last will and testament,\n" +
			"and hereby revoke all wills and codicils heretofore made by me.\n" +
			"I give and bequeath to my grandnephew, Simon P. Jones,\n" +
			"son of my dear niece, Mary Matthew,\n" +
			"all of my right, title and interest in\n" +
			"and to the house and land which I own near Mount Holly.\n" +
			"The above provision and bequest is contingent on my aforementioned grand-nephew discovering\n" +
			"the location of the 46th room of my forty-five room estate.",
	}
}
