package metastore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var documentSchema string

type (
	// FileProvider serves metadata from a YAML document.
	//
	// Example document:
	//
	//	databases:
	//	  - name: sales
	//	    location: hdfs://left/warehouse/tablespace/external/hive/sales.db
	//	    tables:
	//	      - name: events
	//	        owner: etl
	//	        definition:
	//	          - CREATE EXTERNAL TABLE `events`(
	//	          - ...
	//	        partitions:
	//	          dt=2024-01-01: hdfs://left/data/sales/events/dt=2024-01-01
	FileProvider struct {
		databases []*Database
		index     map[string]*Database
	}

	document struct {
		Databases []*Database `yaml:"databases"`
	}
)

// LoadFile reads and validates the metadata document at path.
func LoadFile(path string) (*FileProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open metadata file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load reads and validates a metadata document. The document is checked
// against the embedded JSON schema before it is decoded.
func Load(r io.Reader) (*FileProvider, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read metadata document")
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata document")
	}

	p := &FileProvider{
		databases: doc.Databases,
		index:     make(map[string]*Database, len(doc.Databases)),
	}
	for _, db := range doc.Databases {
		if _, ok := p.index[db.Name]; ok {
			return nil, errors.Errorf("database %s is listed more than once", db.Name)
		}
		for _, tbl := range db.Tables {
			normalize(tbl)
		}
		p.index[db.Name] = db
	}

	return p, nil
}

// Validate checks a YAML metadata document against the embedded schema.
func Validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to parse metadata document")
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "metadata document cannot be represented as JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return errors.Wrap(err, "failed to validate metadata document")
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return errors.Errorf("invalid metadata document: %s", strings.Join(msgs, "; "))
	}

	return nil
}

func (p *FileProvider) Databases(_ context.Context) ([]*Database, error) {
	return p.databases, nil
}

func (p *FileProvider) Tables(_ context.Context, db string) ([]*Table, error) {
	d, ok := p.index[db]
	if !ok {
		return nil, errors.Errorf("database %s not found in metadata document", db)
	}

	return d.Tables, nil
}

// normalize splits definition entries holding several lines so every entry
// is a single line.
func normalize(tbl *Table) {
	var lines []string
	for _, entry := range tbl.Definition {
		for _, line := range strings.Split(strings.TrimRight(entry, "\n"), "\n") {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	tbl.Definition = lines

	if tbl.Partitions == nil {
		tbl.Partitions = make(map[string]string)
	}
	if tbl.Target != nil {
		normalize(tbl.Target)
	}
}
