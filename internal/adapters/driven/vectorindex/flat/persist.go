package flat

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// vectorsMagic identifies the binary vector file format.
var vectorsMagic = [4]byte{'K', 'B', 'V', '1'}

// vectorsHeader precedes the float32 little-endian vector data.
type vectorsHeader struct {
	Magic     [4]byte
	Dimension uint32
	Count     uint32
}

// metadata is the JSON sidecar, position-aligned with the vector file.
type metadata struct {
	BuildID   string    `json:"build_id"`
	CreatedAt time.Time `json:"created_at"`
	Records   []record  `json:"records"`
}

// Save persists the vector file and the metadata sidecar. Each artifact
// is written to a temporary file and renamed into place, so a reader
// never sees a partially written file. The two renames are not jointly
// atomic: a concurrent reader can observe a new vector file next to an
// old sidecar for a moment. Load detects that window via the record
// count check.
func (idx *Index) Save() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.dimension == 0 {
		return fmt.Errorf("flat: no index to save")
	}
	if err := os.MkdirAll(idx.dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	if err := idx.writeVectors(); err != nil {
		return err
	}
	return idx.writeMetadata()
}

func (idx *Index) writeVectors() error {
	path := filepath.Join(idx.dir, vectorsFile)
	tmp, err := os.CreateTemp(idx.dir, vectorsFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp vector file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	header := vectorsHeader{
		Magic:     vectorsMagic,
		Dimension: uint32(idx.dimension),
		Count:     uint32(len(idx.vectors)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		tmp.Close()
		return fmt.Errorf("write vector header: %w", err)
	}
	for _, v := range idx.vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			tmp.Close()
			return fmt.Errorf("write vector data: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush vector file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close vector file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace vector file: %w", err)
	}
	return nil
}

func (idx *Index) writeMetadata() error {
	path := filepath.Join(idx.dir, metadataFile)
	meta := metadata{
		BuildID:   idx.buildID,
		CreatedAt: time.Now().UTC(),
		Records:   idx.records,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp, err := os.CreateTemp(idx.dir, metadataFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}
	return nil
}

// Load restores a previously saved index. A missing artifact (either
// one) means no index was saved: Load returns (false, nil). Artifacts
// that exist but disagree with each other are an error.
func (idx *Index) Load() (bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	vecPath := filepath.Join(idx.dir, vectorsFile)
	metaPath := filepath.Join(idx.dir, metadataFile)

	f, err := os.Open(vecPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open vector file: %w", err)
	}
	defer f.Close()

	metaData, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read metadata file: %w", err)
	}

	r := bufio.NewReader(f)
	var header vectorsHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return false, fmt.Errorf("read vector header: %w", err)
	}
	if header.Magic != vectorsMagic {
		return false, fmt.Errorf("flat: %s is not a vector index file", vecPath)
	}
	if header.Dimension == 0 {
		return false, fmt.Errorf("flat: vector file has zero dimension")
	}

	vectors := make([][]float32, header.Count)
	for i := range vectors {
		v := make([]float32, header.Dimension)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return false, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = v
	}

	var meta metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return false, fmt.Errorf("parse metadata: %w", err)
	}
	if len(meta.Records) != len(vectors) {
		return false, fmt.Errorf("flat: metadata has %d records, vector file has %d",
			len(meta.Records), len(vectors))
	}

	idx.dimension = int(header.Dimension)
	idx.buildID = meta.BuildID
	idx.vectors = vectors
	idx.records = meta.Records
	return true, nil
}
