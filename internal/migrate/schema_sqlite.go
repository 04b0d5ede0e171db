package migrate

var sqliteMigrations = []dbMigration{
	{
		Version: 1,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
				role          VARCHAR(32)  NOT NULL,
				name          VARCHAR(255) NOT NULL,
				email         VARCHAR(255) NOT NULL UNIQUE,
				phone         VARCHAR(64),
				password_hash VARCHAR(255) NOT NULL,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS artists (
				id         INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
				name       VARCHAR(255) NOT NULL UNIQUE,
				type       VARCHAR(32)  NOT NULL,
				label      VARCHAR(255),
				members    VARCHAR(255),
				agency     VARCHAR(255),
				notes      TEXT,
				email      VARCHAR(255),
				phone      VARCHAR(64),
				web        VARCHAR(512),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id              INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
				category        VARCHAR(32)  NOT NULL DEFAULT 'Concert',
				title           VARCHAR(255) NOT NULL,
				start_          DATETIME NOT NULL,
				end_            DATETIME,
				doors_open      DATETIME,
				state           VARCHAR(32),
				floors          VARCHAR(64),
				responsible_id  INTEGER REFERENCES users (id) ON DELETE SET NULL,
				light_id        INTEGER REFERENCES users (id) ON DELETE SET NULL,
				sound_id        INTEGER REFERENCES users (id) ON DELETE SET NULL,
				artist_care_id  INTEGER REFERENCES users (id) ON DELETE SET NULL,
				admission       INTEGER CHECK (admission BETWEEN 0 AND 100),
				break_even      INTEGER CHECK (break_even BETWEEN 0 AND 100),
				presstext       TEXT,
				notes_internal  TEXT,
				technical_notes TEXT,
				api_notes       TEXT,
				created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_start ON events (start_)`,
			`CREATE TABLE IF NOT EXISTS event_bookings (
				event_id  INTEGER NOT NULL REFERENCES events (id) ON DELETE CASCADE,
				artist_id INTEGER NOT NULL REFERENCES artists (id) ON DELETE CASCADE,
				PRIMARY KEY (event_id, artist_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_event_bookings_artist ON event_bookings (artist_id)`,
			`CREATE TABLE IF NOT EXISTS event_images (
				id          INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
				event_id    INTEGER NOT NULL REFERENCES events (id),
				filename    VARCHAR(255) NOT NULL,
				url         VARCHAR(512) NOT NULL,
				uploaded_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_event_images_event ON event_images (event_id)`,
		},
	},
	{
		Version: 2,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS refresh_tokens (
				id         INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token_hash CHAR(64) NOT NULL UNIQUE,
				expires_at DATETIME NOT NULL,
				revoked_at DATETIME,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`ALTER TABLE event_images ADD COLUMN deleted_at DATETIME`,
			`CREATE INDEX IF NOT EXISTS idx_event_images_deleted ON event_images (deleted_at)`,
		},
	},
}
