package io

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const createGalaxies = `CREATE TABLE IF NOT EXISTS galaxies (
	snap INTEGER NOT NULL,
	file INTEGER NOT NULL,
	tree INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	galaxy_index INTEGER NOT NULL,
	central_galaxy_index INTEGER NOT NULL,
	halo INTEGER NOT NULL,
	type INTEGER NOT NULL,
	merge_type INTEGER NOT NULL,
	merge_into_id INTEGER NOT NULL,
	merge_into_snap INTEGER NOT NULL,
	dt REAL NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	z REAL NOT NULL,
	len INTEGER NOT NULL,
	mvir REAL NOT NULL,
	central_mvir REAL NOT NULL,
	rvir REAL NOT NULL,
	vvir REAL NOT NULL,
	vmax REAL NOT NULL,
	stellar_mass REAL NOT NULL,
	bulge_mass REAL NOT NULL,
	cold_gas REAL NOT NULL,
	hot_gas REAL NOT NULL,
	ejected_mass REAL NOT NULL,
	black_hole_mass REAL NOT NULL,
	ics REAL NOT NULL,
	sfr_disk REAL NOT NULL,
	sfr_bulge REAL NOT NULL,
	disk_radius REAL NOT NULL,
	infall_mvir REAL NOT NULL,
	PRIMARY KEY (file, tree, snap, idx)
)`

const insertGalaxy = `INSERT INTO galaxies VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
)`

// SQLiteFile returns the name of the database written for tree file fileNr.
func SQLiteFile(con *ModelConfig, fileNr int) string {
	return filepath.Join(con.OutputDir,
		fmt.Sprintf("%s_%d.db", con.FileNameGalaxies, fileNr))
}

// SQLiteWriter writes every output snapshot of a tree file to a single
// galaxies table. Each tree is written in its own transaction.
type SQLiteWriter struct {
	db     *sql.DB
	fileNr int
}

// NewSQLiteWriter opens the database at path, creating it if needed. Rows
// left over from an earlier run on the same file are removed.
func NewSQLiteWriter(path string, fileNr int) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(createGalaxies); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create galaxies table: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM galaxies WHERE file = ?`, fileNr); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clear galaxies: %w", err)
	}
	return &SQLiteWriter{db: db, fileNr: fileNr}, nil
}

func (w *SQLiteWriter) WriteTree(c *Catalog) (retErr error) {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(insertGalaxy)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for s, gals := range c.Gals {
		for i := range gals {
			o := &gals[i]
			if _, err := stmt.Exec(
				c.Snaps[s], w.fileNr, c.Tree, i,
				o.GalaxyIndex, o.CentralGalaxyIndex, o.SAGEHaloIndex,
				o.Type, o.MergeType, o.MergeIntoID, o.MergeIntoSnapNum,
				o.DT, o.Pos[0], o.Pos[1], o.Pos[2], o.Len,
				o.Mvir, o.CentralMvir, o.Rvir, o.Vvir, o.Vmax,
				o.StellarMass, o.BulgeMass, o.ColdGas, o.HotGas,
				o.EjectedMass, o.BlackHoleMass, o.ICS,
				o.SfrDisk, o.SfrBulge, o.DiskRadius, o.InfallMvir,
			); err != nil {
				return fmt.Errorf("insert galaxy %d of tree %d: %w", i, c.Tree, err)
			}
		}
	}

	return tx.Commit()
}

func (w *SQLiteWriter) Close() error { return w.db.Close() }
