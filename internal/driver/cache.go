package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/sema"
	"decaf/internal/treeio"
	"decaf/internal/types"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DiskCache хранит результаты проверки по хэшу документа и опций.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is everything needed to answer a check without analyzing.
type DiskPayload struct {
	Schema uint16

	Path        string
	Diagnostics []diag.Diagnostic
	Dropped     int
	Sema        sema.Result

	// Tree is the annotated tree in the packed format; Types holds the
	// computed type of every node in pre-order, since decoding drops them.
	Tree  []byte
	Types []uint8
}

// OpenDiskCache opens (creating if needed) a cache rooted at dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// Подкаталог по первым двум символам, чтобы не класть всё в одну папку.
	return filepath.Join(c.dir, "trees", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, потом удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey: H(schema || format || options || document).
func cacheKey(data []byte, format treeio.Format, opts Options) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "decaf-cache/%d\x00%s\x00%s\x00%s\x00%d\x00%t\x00",
		diskCacheSchemaVersion, format, opts.ForCondition, opts.entryPoint(), opts.MaxDiagnostics, opts.Dedup)
	_, _ = h.Write(data)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func store(c *DiskCache, key Digest, res *FileResult) error {
	var tree bytes.Buffer
	if err := treeio.Encode(&tree, res.Tree, res.Root, treeio.FormatPacked); err != nil {
		return err
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        res.Path,
		Diagnostics: res.Bag.Items(),
		Dropped:     res.Bag.Dropped(),
		Sema:        res.Sema,
		Tree:        tree.Bytes(),
		Types:       nodeTypes(res.Tree, res.Root),
	}
	return c.Put(key, payload)
}

// restore fills res from a cached payload. Timings are not restored: the
// result reports the time spent now.
func restore(c *DiskCache, key Digest, res *FileResult) (bool, error) {
	var payload DiskPayload
	hit, err := c.Get(key, &payload)
	if err != nil || !hit {
		return false, err
	}
	tree, root, err := treeio.Decode(bytes.NewReader(payload.Tree), treeio.FormatPacked)
	if err != nil {
		return false, fmt.Errorf("cached tree %s: %w", key, err)
	}
	if err := applyTypes(tree, root, payload.Types); err != nil {
		return false, fmt.Errorf("cached tree %s: %w", key, err)
	}
	for _, d := range payload.Diagnostics {
		res.Bag.Add(d)
	}
	res.Bag.NoteDropped(payload.Dropped)
	res.Tree, res.Root = tree, root
	res.Sema = payload.Sema
	res.Sema.Root = root
	res.Cached = true
	return true, nil
}

func nodeTypes(tree *ast.Tree, root ast.NodeID) []uint8 {
	out := make([]uint8, 0, tree.Len())
	tree.Walk(root, func(_ ast.NodeID, n *ast.Node) bool {
		out = append(out, uint8(n.Type))
		return true
	})
	return out
}

func applyTypes(tree *ast.Tree, root ast.NodeID, tys []uint8) error {
	var (
		i   int
		err error
	)
	tree.Walk(root, func(id ast.NodeID, _ *ast.Node) bool {
		if err != nil {
			return false
		}
		if i >= len(tys) {
			err = fmt.Errorf("type table has %d entries, tree has more nodes", len(tys))
			return false
		}
		if ty := types.Type(tys[i]); ty.Known() {
			err = tree.SetType(id, ty)
		}
		i++
		return true
	})
	if err == nil && i != len(tys) {
		err = fmt.Errorf("type table has %d entries, tree has %d nodes", len(tys), i)
	}
	return err
}
