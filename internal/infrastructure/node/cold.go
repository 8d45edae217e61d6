package node

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

// CreateColdNode provisions the cold node for id by copying the hot node's
// credential file verbatim. It returns the path of the new cold copy.
//
// The source is validated and read before anything is created under the cold
// root, so a missing source leaves the cold root untouched. An existing cold
// credential file is a conflict and is never overwritten. Concurrent calls
// may race on directory creation; an existing directory is accepted.
func (o *Orchestrator) CreateColdNode(id string) (string, error) {
	if id == "" {
		return "", &rpc.Error{Kind: rpc.KindEncoding, Method: "createcoldnode", Message: "chain identifier is required"}
	}
	if !isPathSafe(id) {
		return "", &rpc.Error{Kind: rpc.KindEncoding, Method: "createcoldnode", Message: fmt.Sprintf("invalid chain identifier %q", id)}
	}

	hotDir := o.layout.HotDir(id)
	if info, err := os.Stat(hotDir); err != nil || !info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", &NodeError{ID: id, Operation: "create cold", Message: "cannot inspect hot data directory", Err: err}
		}
		return "", &SourceNotFoundError{ID: id, Path: hotDir}
	}

	src := o.layout.HotCredentialPath(id)
	srcInfo, err := os.Stat(src)
	if err != nil || !srcInfo.Mode().IsRegular() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", &NodeError{ID: id, Operation: "create cold", Message: "cannot inspect credential file", Err: err}
		}
		return "", &SourceNotFoundError{ID: id, Path: src}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", &NodeError{ID: id, Operation: "create cold", Message: fmt.Sprintf("cannot read %s", src), Err: err}
	}

	coldDir := o.layout.ColdDir(id)
	if err := os.MkdirAll(coldDir, 0700); err != nil && !errors.Is(err, fs.ErrExist) {
		return "", &NodeError{ID: id, Operation: "create cold", Message: fmt.Sprintf("cannot create %s", coldDir), Err: err}
	}
	if info, err := os.Stat(coldDir); err != nil || !info.IsDir() {
		return "", &NodeError{ID: id, Operation: "create cold", Message: fmt.Sprintf("%s is not a directory", coldDir), Err: err}
	}

	dst := o.layout.ColdCredentialPath(id)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &ConflictError{ID: id, Path: dst}
		}
		return "", &NodeError{ID: id, Operation: "create cold", Message: fmt.Sprintf("cannot create %s", dst), Err: err}
	}

	if err := writeAndSync(f, data); err != nil {
		_ = os.Remove(dst)
		return "", &NodeError{ID: id, Operation: "create cold", Message: fmt.Sprintf("cannot write %s", dst), Err: err}
	}

	o.logger.Info("cold node provisioned",
		"chain", id,
		"source", src,
		"path", dst)
	return dst, nil
}

// isPathSafe reports whether id names a single directory under a data root.
func isPathSafe(id string) bool {
	return id != "." && !strings.Contains(id, "..") && !strings.ContainsAny(id, `/\`)
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
