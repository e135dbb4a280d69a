package store

// Collections and their indexes. Layout names are unique case-sensitive;
// hotkey key combinations are unique across all records; settings are a
// unique-keyed document per entry.
const schema = `
CREATE TABLE IF NOT EXISTS layouts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 0,
    placements TEXT NOT NULL DEFAULT '[]',
    hotkey_id TEXT,
    window_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hotkeys (
    id TEXT PRIMARY KEY,
    modifiers INTEGER NOT NULL,
    key_code INTEGER NOT NULL,
    action TEXT NOT NULL,
    is_enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_layouts_name ON layouts(name);
CREATE INDEX IF NOT EXISTS idx_layouts_created_at ON layouts(created_at);
CREATE INDEX IF NOT EXISTS idx_layouts_is_active ON layouts(is_active);
CREATE UNIQUE INDEX IF NOT EXISTS idx_hotkeys_keys ON hotkeys(modifiers, key_code);
CREATE INDEX IF NOT EXISTS idx_hotkeys_is_enabled ON hotkeys(is_enabled);
CREATE INDEX IF NOT EXISTS idx_hotkeys_action ON hotkeys(action);
CREATE UNIQUE INDEX IF NOT EXISTS idx_settings_key ON settings(key);
`

// Collection names, used by statistics and entity counting.
var collections = []string{"layouts", "hotkeys", "settings"}
