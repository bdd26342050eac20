package postgres

// Migration is one forward-only schema step. Versions are applied in order
// and recorded in schema_migrations.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_rooms",
		SQL: `
CREATE TABLE IF NOT EXISTS rooms (
	id            uuid        PRIMARY KEY,
	name          text        NOT NULL CHECK (char_length(name) BETWEEN 2 AND 100),
	location      text        NOT NULL DEFAULT '',
	capacity      integer     NOT NULL CHECK (capacity BETWEEN 1 AND 500),
	open_at       text        NOT NULL CHECK (open_at ~ '^([01][0-9]|2[0-3]):[0-5][0-9]$'),
	close_at      text        NOT NULL CHECK (close_at ~ '^([01][0-9]|2[0-3]):[0-5][0-9]$'),
	time_zone     text        NOT NULL,
	slot_step_min integer     NOT NULL CHECK (slot_step_min BETWEEN 5 AND 120),
	active        boolean     NOT NULL DEFAULT true,
	created_at    timestamptz NOT NULL DEFAULT now(),
	CHECK (close_at > open_at)
);
CREATE UNIQUE INDEX IF NOT EXISTS rooms_name_unique ON rooms (lower(name));
`,
	},
	{
		Version: 2,
		Name:    "create_bookings",
		SQL: `
CREATE EXTENSION IF NOT EXISTS btree_gist;
CREATE TABLE IF NOT EXISTS bookings (
	id         uuid        PRIMARY KEY,
	room_id    text        NOT NULL CHECK (char_length(room_id) BETWEEN 1 AND 64),
	title      text        NOT NULL,
	organizer  text        NOT NULL,
	start_time timestamptz NOT NULL,
	end_time   timestamptz NOT NULL,
	status     text        NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz,
	CONSTRAINT bookings_duration CHECK (
		end_time - start_time BETWEEN interval '15 minutes' AND interval '480 minutes'
	),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		room_id WITH =,
		tstzrange(start_time, end_time, '[)') WITH &&
	) WHERE (status = 'confirmed')
);
CREATE INDEX IF NOT EXISTS bookings_room_window ON bookings (room_id, start_time, end_time);
`,
	},
	{
		Version: 3,
		Name:    "create_booking_locks",
		SQL: `
CREATE TABLE IF NOT EXISTS booking_locks (
	id         text        PRIMARY KEY,
	owner      text        NOT NULL,
	expires_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS booking_locks_expires_at ON booking_locks (expires_at);
`,
	},
}
