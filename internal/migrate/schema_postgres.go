package migrate

var postgresMigrations = []dbMigration{
	{
		Version: 1,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL PRIMARY KEY,
				role          VARCHAR(32)  NOT NULL,
				name          VARCHAR(255) NOT NULL,
				email         VARCHAR(255) NOT NULL UNIQUE,
				phone         VARCHAR(64),
				password_hash VARCHAR(255) NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS artists (
				id         BIGSERIAL PRIMARY KEY,
				name       VARCHAR(255) NOT NULL UNIQUE,
				type       VARCHAR(32)  NOT NULL,
				label      VARCHAR(255),
				members    VARCHAR(255),
				agency     VARCHAR(255),
				notes      TEXT,
				email      VARCHAR(255),
				phone      VARCHAR(64),
				web        VARCHAR(512),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id              BIGSERIAL PRIMARY KEY,
				category        VARCHAR(32)  NOT NULL DEFAULT 'Concert',
				title           VARCHAR(255) NOT NULL,
				start_          TIMESTAMPTZ NOT NULL,
				end_            TIMESTAMPTZ,
				doors_open      TIMESTAMPTZ,
				state           VARCHAR(32),
				floors          VARCHAR(64),
				responsible_id  BIGINT REFERENCES users (id) ON DELETE SET NULL,
				light_id        BIGINT REFERENCES users (id) ON DELETE SET NULL,
				sound_id        BIGINT REFERENCES users (id) ON DELETE SET NULL,
				artist_care_id  BIGINT REFERENCES users (id) ON DELETE SET NULL,
				admission       INTEGER CHECK (admission BETWEEN 0 AND 100),
				break_even      INTEGER CHECK (break_even BETWEEN 0 AND 100),
				presstext       TEXT,
				notes_internal  TEXT,
				technical_notes TEXT,
				api_notes       TEXT,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_start ON events (start_)`,
			`CREATE TABLE IF NOT EXISTS event_bookings (
				event_id  BIGINT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
				artist_id BIGINT NOT NULL REFERENCES artists (id) ON DELETE CASCADE,
				PRIMARY KEY (event_id, artist_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_event_bookings_artist ON event_bookings (artist_id)`,
			`CREATE TABLE IF NOT EXISTS event_images (
				id          BIGSERIAL PRIMARY KEY,
				event_id    BIGINT NOT NULL REFERENCES events (id),
				filename    VARCHAR(255) NOT NULL,
				url         VARCHAR(512) NOT NULL,
				uploaded_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_event_images_event ON event_images (event_id)`,
		},
	},
	{
		Version: 2,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS refresh_tokens (
				id         BIGSERIAL PRIMARY KEY,
				user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token_hash CHAR(64) NOT NULL UNIQUE,
				expires_at TIMESTAMPTZ NOT NULL,
				revoked_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`ALTER TABLE event_images ADD COLUMN IF NOT EXISTS deleted_at TIMESTAMPTZ`,
			`CREATE INDEX IF NOT EXISTS idx_event_images_deleted ON event_images (deleted_at)`,
		},
	},
}
