package reader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"

	_ "modernc.org/sqlite" // cgo-free sqlite driver
)

// Cursor message sender types inside composer conversation arrays.
const (
	cursorUserMessage      = 1
	cursorAssistantMessage = 2
)

// CursorReader reads Cursor composer sessions from the state.vscdb SQLite
// databases under the per-workspace storage directories.
type CursorReader struct {
	root string
}

var _ contract.SessionReader = &CursorReader{} // Compile-time check

// NewCursorReader builds a reader rooted at the Cursor user-data directory,
// defaulting to the platform location.
func NewCursorReader(root string) *CursorReader {
	if root == "" {
		root = defaultCursorRoot()
	}
	return &CursorReader{root: root}
}

// defaultCursorRoot returns the platform Cursor user-data directory.
func defaultCursorRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Cursor")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Cursor")
		}
		return filepath.Join(home, "AppData", "Roaming", "Cursor")
	default:
		return filepath.Join(home, ".config", "Cursor")
	}
}

// Tool implements the contract.SessionReader interface.
func (r *CursorReader) Tool() schema.AgentTool { return schema.CursorTool }

// ReadSessions implements the contract.SessionReader interface.
func (r *CursorReader) ReadSessions(ctx context.Context, window contract.Window) ([]schema.Conversation, []*contract.ParseError, error) {
	if r.root == "" {
		return nil, nil, nil
	}
	storageRoot := filepath.Join(r.root, "User", "workspaceStorage")
	dbPaths, err := filepath.Glob(filepath.Join(storageRoot, "*", "state.vscdb"))
	if err != nil || len(dbPaths) == 0 {
		return nil, nil, nil // agent not installed, nothing to read
	}

	var convs []schema.Conversation
	var parseErrs []*contract.ParseError
	for _, dbPath := range dbPaths {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		workspace := workspaceForStorageDir(filepath.Dir(dbPath))
		fromDB, perr := r.readDatabase(ctx, dbPath, workspace)
		if perr != nil {
			parseErrs = append(parseErrs, perr)
			continue
		}
		for _, c := range fromDB {
			if window.Contains(c.StartTime) {
				convs = append(convs, c)
			}
		}
	}
	return convs, parseErrs, nil
}

// readDatabase extracts all composer sessions from one state.vscdb. The
// database is opened read-only; a corrupt or locked database degrades to a
// single ParseError for the file.
func (r *CursorReader) readDatabase(ctx context.Context, dbPath, workspace string) ([]schema.Conversation, *contract.ParseError) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, contract.NewParseError(dbPath, err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	payloads, err := composerPayloads(ctx, db)
	if err != nil {
		return nil, contract.NewParseError(dbPath, err)
	}

	var convs []schema.Conversation
	for _, payload := range payloads {
		conv, err := parseComposer(payload, workspace, dbPath)
		if err != nil {
			return nil, contract.NewParseError(dbPath, err)
		}
		if conv != nil {
			convs = append(convs, *conv)
		}
	}
	return convs, nil
}

// composerPayloads collects raw composer JSON blobs from the key-value
// tables. Newer Cursor builds keep sessions in cursorDiskKV; older ones store
// a bundle under composer.composerData in ItemTable.
func composerPayloads(ctx context.Context, db *sql.DB) ([][]byte, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT value FROM cursorDiskKV WHERE key LIKE 'composerData:%'`)
	if err == nil {
		defer func() { _ = rows.Close() }()
		var out [][]byte
		for rows.Next() {
			var value []byte
			if err := rows.Scan(&value); err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	// Fallback: the ItemTable bundle.
	var bundle []byte
	err = db.QueryRowContext(ctx,
		`SELECT value FROM ItemTable WHERE key = 'composer.composerData'`).Scan(&bundle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("no composer data tables: %w", err)
	}

	var wrapper struct {
		AllComposers []json.RawMessage `json:"allComposers"`
	}
	if err := json.Unmarshal(bundle, &wrapper); err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(wrapper.AllComposers))
	for _, raw := range wrapper.AllComposers {
		out = append(out, raw)
	}
	return out, nil
}

// composerData is the composer session JSON stored by Cursor.
type composerData struct {
	ComposerID    string `json:"composerId"`
	CreatedAt     int64  `json:"createdAt"`     // unix millis
	LastUpdatedAt int64  `json:"lastUpdatedAt"` // unix millis
	Conversation  []struct {
		Type      int    `json:"type"`
		Text      string `json:"text"`
		Timestamp int64  `json:"timestamp"` // unix millis, often absent
	} `json:"conversation"`
}

// parseComposer converts one composer blob into a conversation, or nil when
// the session holds no messages.
func parseComposer(payload []byte, workspace, sourcePath string) (*schema.Conversation, error) {
	var data composerData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("bad composer payload: %w", err)
	}
	if len(data.Conversation) == 0 {
		return nil, nil
	}

	conv := &schema.Conversation{
		SessionID:     data.ComposerID,
		Tool:          schema.CursorTool,
		WorkspacePath: workspace,
		SourcePath:    sourcePath,
	}
	if data.CreatedAt > 0 {
		conv.StartTime = time.UnixMilli(data.CreatedAt).UTC()
	}
	if data.LastUpdatedAt > 0 {
		conv.EndTime = time.UnixMilli(data.LastUpdatedAt).UTC()
	}

	for _, m := range data.Conversation {
		turn := schema.Turn{Content: m.Text}
		switch m.Type {
		case cursorUserMessage:
			turn.Role = schema.UserRole
		case cursorAssistantMessage:
			turn.Role = schema.AssistantRole
		default:
			continue
		}
		if m.Timestamp > 0 {
			turn.Timestamp = time.UnixMilli(m.Timestamp).UTC()
		}
		conv.Turns = append(conv.Turns, turn)
	}
	if len(conv.Turns) == 0 {
		return nil, nil
	}

	finalizeConversation(conv)
	return conv, nil
}

// workspaceForStorageDir resolves the workspace folder a storage directory
// belongs to, via its workspace.json sidecar.
func workspaceForStorageDir(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "workspace.json"))
	if err != nil {
		return ""
	}
	var meta struct {
		Folder string `json:"folder"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	return strings.TrimPrefix(meta.Folder, "file://")
}
