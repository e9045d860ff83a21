package store

const schema = `
CREATE TABLE IF NOT EXISTS hip_files (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name       TEXT NOT NULL,
	file_hash       TEXT NOT NULL UNIQUE,
	source          TEXT NOT NULL,
	source_url      TEXT NOT NULL,
	houdini_version TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	systems         TEXT NOT NULL DEFAULT '[]',
	node_count      INTEGER NOT NULL DEFAULT 0,
	parsed_at       DATETIME NOT NULL,
	parse_status    TEXT NOT NULL,
	parse_error     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS parameter_snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	hip_file_id INTEGER NOT NULL REFERENCES hip_files(id),
	node_type   TEXT NOT NULL,
	node_path   TEXT NOT NULL,
	param_name  TEXT NOT NULL,
	param_value TEXT NOT NULL,
	is_default  INTEGER NOT NULL,
	expression  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_parameter_snapshots_node_type ON parameter_snapshots(node_type);
CREATE INDEX IF NOT EXISTS idx_parameter_snapshots_param_name ON parameter_snapshots(param_name);
CREATE INDEX IF NOT EXISTS idx_parameter_snapshots_hip_file_id ON parameter_snapshots(hip_file_id);
`
