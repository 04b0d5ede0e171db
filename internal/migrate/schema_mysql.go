package migrate

var mysqlMigrations = []dbMigration{
	{
		Version: 1,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				role          VARCHAR(32)  NOT NULL,
				name          VARCHAR(255) NOT NULL,
				email         VARCHAR(255) NOT NULL,
				phone         VARCHAR(64)  NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uq_users_email (email)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS artists (
				id         BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name       VARCHAR(255) NOT NULL,
				type       VARCHAR(32)  NOT NULL,
				label      VARCHAR(255) NULL,
				members    VARCHAR(255) NULL,
				agency     VARCHAR(255) NULL,
				notes      TEXT NULL,
				email      VARCHAR(255) NULL,
				phone      VARCHAR(64)  NULL,
				web        VARCHAR(512) NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uq_artists_name (name)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS events (
				id              BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				category        VARCHAR(32)  NOT NULL DEFAULT 'Concert',
				title           VARCHAR(255) NOT NULL,
				start_          DATETIME NOT NULL,
				end_            DATETIME NULL,
				doors_open      DATETIME NULL,
				state           VARCHAR(32) NULL,
				floors          VARCHAR(64) NULL,
				responsible_id  BIGINT NULL,
				light_id        BIGINT NULL,
				sound_id        BIGINT NULL,
				artist_care_id  BIGINT NULL,
				admission       INT NULL,
				break_even      INT NULL,
				presstext       TEXT NULL,
				notes_internal  TEXT NULL,
				technical_notes TEXT NULL,
				api_notes       TEXT NULL,
				created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				KEY idx_events_start (start_),
				CONSTRAINT fk_events_responsible FOREIGN KEY (responsible_id) REFERENCES users (id) ON DELETE SET NULL,
				CONSTRAINT fk_events_light FOREIGN KEY (light_id) REFERENCES users (id) ON DELETE SET NULL,
				CONSTRAINT fk_events_sound FOREIGN KEY (sound_id) REFERENCES users (id) ON DELETE SET NULL,
				CONSTRAINT fk_events_artist_care FOREIGN KEY (artist_care_id) REFERENCES users (id) ON DELETE SET NULL,
				CONSTRAINT ck_events_admission CHECK (admission IS NULL OR admission BETWEEN 0 AND 100),
				CONSTRAINT ck_events_break_even CHECK (break_even IS NULL OR break_even BETWEEN 0 AND 100)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS event_bookings (
				event_id  BIGINT NOT NULL,
				artist_id BIGINT NOT NULL,
				PRIMARY KEY (event_id, artist_id),
				KEY idx_event_bookings_artist (artist_id),
				CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE,
				CONSTRAINT fk_bookings_artist FOREIGN KEY (artist_id) REFERENCES artists (id) ON DELETE CASCADE
			) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS event_images (
				id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				event_id    BIGINT NOT NULL,
				filename    VARCHAR(255) NOT NULL,
				url         VARCHAR(512) NOT NULL,
				uploaded_at DATETIME NOT NULL,
				KEY idx_event_images_event (event_id),
				CONSTRAINT fk_images_event FOREIGN KEY (event_id) REFERENCES events (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
	},
	{
		Version: 2,
		Queries: []string{
			`CREATE TABLE IF NOT EXISTS refresh_tokens (
				id         BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				user_id    BIGINT NOT NULL,
				token_hash CHAR(64) NOT NULL,
				expires_at DATETIME NOT NULL,
				revoked_at DATETIME NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uq_refresh_tokens_hash (token_hash),
				CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
			) ENGINE=InnoDB`,
			`ALTER TABLE event_images ADD COLUMN deleted_at DATETIME NULL`,
			`CREATE INDEX idx_event_images_deleted ON event_images (deleted_at)`,
		},
	},
}
