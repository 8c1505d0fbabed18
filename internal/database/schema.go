package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order.  Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY ix_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_genres_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS actors (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS plays (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS play_genres (
		play_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (play_id, genre_id),
		KEY ix_play_genres_genre (genre_id),
		CONSTRAINT fk_play_genres_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE CASCADE,
		CONSTRAINT fk_play_genres_genre FOREIGN KEY (genre_id) REFERENCES genres (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS play_actors (
		play_id BIGINT UNSIGNED NOT NULL,
		actor_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (play_id, actor_id),
		KEY ix_play_actors_actor (actor_id),
		CONSTRAINT fk_play_actors_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE CASCADE,
		CONSTRAINT fk_play_actors_actor FOREIGN KEY (actor_id) REFERENCES actors (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS theatre_halls (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		num_rows INT UNSIGNED NOT NULL,
		seats_in_row INT UNSIGNED NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS performances (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		play_id BIGINT UNSIGNED NOT NULL,
		theatre_hall_id BIGINT UNSIGNED NOT NULL,
		show_time DATETIME NOT NULL,
		KEY ix_performances_show_time (show_time),
		CONSTRAINT fk_performances_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE RESTRICT,
		CONSTRAINT fk_performances_hall FOREIGN KEY (theatre_hall_id) REFERENCES theatre_halls (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_reservations_created (created_at),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		row_num INT UNSIGNED NOT NULL,
		seat_num INT UNSIGNED NOT NULL,
		performance_id BIGINT UNSIGNED NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_tickets_seat (performance_id, row_num, seat_num),
		KEY ix_tickets_reservation (reservation_id),
		CONSTRAINT fk_tickets_performance FOREIGN KEY (performance_id) REFERENCES performances (id) ON DELETE RESTRICT,
		CONSTRAINT fk_tickets_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
