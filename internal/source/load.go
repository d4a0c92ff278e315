package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Mode tells how the root document was interpreted.
type Mode int

const (
	// CatalogMode means the root is a catalog referencing scenario-set files.
	CatalogMode Mode = iota
	// StandaloneMode means the root is itself a single scenario set.
	StandaloneMode
)

// String returns "catalog" or "standalone".
func (m Mode) String() string {
	if m == StandaloneMode {
		return "standalone"
	}
	return "catalog"
}

// File is one decoded source file.
type File struct {
	Name    string // base name used to derive output names
	Path    string // path the file was read from
	ModTime time.Time
	Root    *Node
}

// Document is a fully linked source document: the root tree plus every
// scenario-set tree it references. In standalone mode ScenarioSets holds the
// root itself as its only element.
type Document struct {
	Mode         Mode
	FileName     string
	Path         string
	Root         *Node
	ScenarioSets []File
	LastUpdate   time.Time
}

// Files returns the path of every file the document was assembled from, root
// first. It is what watch mode subscribes to.
func (d *Document) Files() []string {
	files := []string{d.Path}
	if d.Mode == CatalogMode {
		for _, f := range d.ScenarioSets {
			files = append(files, f.Path)
		}
	}
	return files
}

// Options tune how a document is loaded.
type Options struct {
	// BaseDir is where relative scenario-set references are resolved first.
	// Defaults to the directory of the root file name.
	BaseDir string
	// ReferenceDir is consulted when a reference is missing from BaseDir.
	ReferenceDir string
	// Decoder decodes the root stream. Defaults to DecoderFor(fileName).
	// Referenced files always pick their decoder by extension.
	Decoder Decoder
	// Confined restricts scenario-set references to local paths.
	Confined bool
}

// LoadFile opens path and loads it, using the file's modification time as
// the initial freshness timestamp.
func LoadFile(path string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("source: stat %s: %w", path, err)
	}
	return Load(f, path, info.ModTime(), opts)
}

// Load decodes the root stream r, detects the mode, and in catalog mode
// resolves and decodes every referenced scenario-set file. modTime seeds
// LastUpdate, which is raised to the newest referenced file.
func Load(r io.Reader, fileName string, modTime time.Time, opts Options) (*Document, error) {
	dec := opts.Decoder
	if dec == nil {
		dec = DecoderFor(fileName)
	}
	root, err := decodeChecked(dec, r, fileName)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		FileName:   filepath.Base(fileName),
		Path:       fileName,
		Root:       root,
		LastUpdate: modTime,
	}

	switch {
	case root.Has(KeyCatalog):
		doc.Mode = CatalogMode
		base := opts.BaseDir
		if base == "" {
			base = filepath.Dir(fileName)
		}
		res := Resolver{BaseDir: base, ReferenceDir: opts.ReferenceDir, Confined: opts.Confined}
		if err := doc.link(res); err != nil {
			return nil, err
		}
	case root.Has(KeyScenarioSet):
		doc.Mode = StandaloneMode
		doc.ScenarioSets = []File{{
			Name:    doc.FileName,
			Path:    fileName,
			ModTime: modTime,
			Root:    root,
		}}
	default:
		return nil, fmt.Errorf("%s: %w", fileName, ErrUnknownDocument)
	}
	return doc, nil
}

// link reads the scenario-set reference list and loads each file.
func (d *Document) link(res Resolver) error {
	list, ok := d.Root.Lookup(KeyScenarioSetFiles)
	if !ok {
		return fmt.Errorf("%s: %w: %s", d.Path, ErrMissingKey, KeyScenarioSetFiles)
	}
	if list.Kind == NullNode {
		return nil
	}
	if list.Kind != SequenceNode {
		return fmt.Errorf("%s: %s: %w: expected a list, got %s", d.Path, KeyScenarioSetFiles, ErrInvalidReference, list.Kind)
	}

	for i, item := range list.Items {
		if item.Kind != ScalarNode || item.Value == "" {
			return fmt.Errorf("%s: %s[%d]: %w: expected a file path, got %s", d.Path, KeyScenarioSetFiles, i, ErrInvalidReference, item.Kind)
		}
		path, err := res.Resolve(item.Value)
		if err != nil {
			return err
		}
		f, err := loadReferenced(path)
		if err != nil {
			return err
		}
		f.Name = filepath.Base(item.Value)
		if f.ModTime.After(d.LastUpdate) {
			d.LastUpdate = f.ModTime
		}
		d.ScenarioSets = append(d.ScenarioSets, f)
	}
	return nil
}

func loadReferenced(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return File{}, fmt.Errorf("source: stat %s: %w", path, err)
	}
	root, err := decodeChecked(DecoderFor(path), fh, path)
	if err != nil {
		return File{}, err
	}
	return File{Path: path, ModTime: info.ModTime(), Root: root}, nil
}

// decodeChecked decodes one stream and applies the duplicate-key check.
func decodeChecked(dec Decoder, r io.Reader, file string) (*Node, error) {
	root, err := dec.Decode(r)
	if err != nil {
		return nil, &SyntaxError{File: file, Err: err}
	}
	if err := CheckDuplicateKeys(file, root); err != nil {
		return nil, err
	}
	return root, nil
}
