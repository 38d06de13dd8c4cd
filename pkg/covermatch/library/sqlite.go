package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

// trackRecord is the SQLite row shape for one reference track. Feature
// vectors are stored as JSON arrays in text columns.
type trackRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	Artist           string `gorm:"uniqueIndex:idx_track_unique,priority:1"`
	Title            string `gorm:"uniqueIndex:idx_track_unique,priority:2"`
	Genre            string
	Lyrics           string
	ChromaSTFT       string `gorm:"column:chroma_stft_mean"`
	ChromaCQT        string `gorm:"column:chroma_cqt_mean"`
	Tonnetz          string `gorm:"column:tonnetz_mean"`
	SpectralContrast string `gorm:"column:spectral_contrast_mean"`
	CreatedAt        time.Time
}

func (trackRecord) TableName() string { return "reference_tracks" }

// SQLiteLoader reads a reference library from a SQLite database. It
// implements covermatch.LibraryLoader.
type SQLiteLoader struct{}

func openDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Load reads every track from the database at path, in insertion order.
func (SQLiteLoader) Load(path string) ([]covermatch.ReferenceTrack, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: err}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("opening sqlite db: %w", err)}
	}
	defer closeDB(db)

	var records []trackRecord
	if err := db.Order("id").Find(&records).Error; err != nil {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("querying tracks: %w", err)}
	}
	if len(records) == 0 {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("database holds no tracks")}
	}

	tracks := make([]covermatch.ReferenceTrack, 0, len(records))
	for _, rec := range records {
		track, err := rec.toTrack()
		if err != nil {
			return nil, &covermatch.LibraryLoadError{Source: path, Err: err}
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Import writes a set of reference tracks into the SQLite database at path,
// migrating the schema first. Existing rows with the same artist and title
// are replaced.
func Import(path string, tracks []covermatch.ReferenceTrack) error {
	db, err := openDB(path)
	if err != nil {
		return &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("opening sqlite db: %w", err)}
	}
	defer closeDB(db)

	if err := db.AutoMigrate(&trackRecord{}); err != nil {
		return &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("auto migrate: %w", err)}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, track := range tracks {
			rec, err := toRecord(track)
			if err != nil {
				return &covermatch.LibraryLoadError{Source: path, Err: err}
			}
			if err := tx.Where("artist = ? AND title = ?", track.Artist, track.Title).
				Delete(&trackRecord{}).Error; err != nil {
				return &covermatch.LibraryLoadError{Source: path, Err: err}
			}
			if err := tx.Create(&rec).Error; err != nil {
				return &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("inserting %s - %s: %w", track.Artist, track.Title, err)}
			}
		}
		return nil
	})
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (r trackRecord) toTrack() (covermatch.ReferenceTrack, error) {
	track := covermatch.ReferenceTrack{
		Artist: r.Artist,
		Title:  r.Title,
		Genre:  r.Genre,
		Lyrics: r.Lyrics,
	}

	for _, col := range []struct {
		name string
		raw  string
		dst  *[]float64
	}{
		{"chroma_stft_mean", r.ChromaSTFT, &track.Features.ChromaSTFT},
		{"chroma_cqt_mean", r.ChromaCQT, &track.Features.ChromaCQT},
		{"tonnetz_mean", r.Tonnetz, &track.Features.Tonnetz},
		{"spectral_contrast_mean", r.SpectralContrast, &track.Features.SpectralContrast},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return track, fmt.Errorf("track %s - %s: malformed %s: %w", r.Artist, r.Title, col.name, err)
		}
	}
	return track, nil
}

func toRecord(t covermatch.ReferenceTrack) (trackRecord, error) {
	rec := trackRecord{
		Artist: t.Artist,
		Title:  t.Title,
		Genre:  t.Genre,
		Lyrics: t.Lyrics,
	}

	for _, col := range []struct {
		src []float64
		dst *string
	}{
		{t.Features.ChromaSTFT, &rec.ChromaSTFT},
		{t.Features.ChromaCQT, &rec.ChromaCQT},
		{t.Features.Tonnetz, &rec.Tonnetz},
		{t.Features.SpectralContrast, &rec.SpectralContrast},
	} {
		raw, err := json.Marshal(col.src)
		if err != nil {
			return rec, err
		}
		*col.dst = string(raw)
	}
	return rec, nil
}
