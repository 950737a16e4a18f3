package manifest

// Entry describes one desired entry of the generated output tree.
//
// The set of implementations is closed: Symlink, File and FileHash. Code
// applying a manifest to disk switches over these three types exhaustively;
// there is no "unknown kind" at runtime.
type Entry interface {
	// entryJSON returns the serializable form of the entry. The JSON shapes
	// are stable because they are persisted in the sidecar file and compared
	// byte-for-byte across runs.
	entryJSON() any
}

// Symlink is a symbolic link to Target. Target is stored as an absolute
// path and rendered relative to the link's own directory at write time.
type Symlink struct {
	Target string
}

type symlinkJSON struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

func (s Symlink) entryJSON() any {
	return symlinkJSON{Target: s.Target, Type: "symlink"}
}

// File is a generated file with literal Content.
type File struct {
	Content    string
	Executable bool
}

type fileJSON struct {
	Content    string `json:"content"`
	Executable bool   `json:"executable,omitempty"`
	Type       string `json:"type"`
}

func (f File) entryJSON() any {
	return fileJSON{Content: f.Content, Executable: f.Executable, Type: "file"}
}

// FileHash is a fingerprint of an externally managed file. It is never
// materialized; it exists so that changes to that file show up as a manifest
// difference and force regeneration.
type FileHash struct {
	Digest string
}

type fileHashJSON struct {
	Hash string `json:"hash"`
	Type string `json:"type"`
}

func (h FileHash) entryJSON() any {
	return fileHashJSON{Hash: h.Digest, Type: "md5"}
}
