package database

// KnownSources lists every data source that gets a seeded sync_status row.
// garmin_api and garmin_db are reserved for direct device integrations.
var KnownSources = []string{"intervals_icu", "garmin_api", "garmin_db"}

// Schema contains all SQL statements for creating tables and indexes
const Schema = `
-- User profile: single implicit user, seeded at initialization
CREATE TABLE IF NOT EXISTS user_profile (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Biometrics: one row per (user, calendar date)
CREATE TABLE IF NOT EXISTS biometrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    date TEXT NOT NULL,  -- YYYY-MM-DD

    -- Wellness readings (all nullable; merged field-by-field across syncs)
    hrv_rmssd REAL,
    resting_hr REAL,
    sleep_duration_minutes INTEGER,
    sleep_score REAL,
    vo2_max REAL,
    body_battery REAL,
    weight_kg REAL,
    body_fat_pct REAL,

    source TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,

    UNIQUE (user_id, date),
    FOREIGN KEY (user_id) REFERENCES user_profile(id)
);

-- Activities: one row per external workout, unique on the upstream identifier
CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    external_id TEXT NOT NULL UNIQUE,

    activity_type TEXT NOT NULL,  -- run, cycle, strength, yoga, walk, hike, swim, other
    start_time TEXT NOT NULL,     -- local ISO timestamp
    duration_seconds INTEGER,
    distance_meters REAL,
    elevation_gain_meters REAL,

    -- Health metrics that may be back-filled after upload
    avg_hr REAL,
    max_hr REAL,
    avg_power REAL,
    normalized_power REAL,
    training_stress_score REAL,
    intensity_factor REAL,
    calories REAL,
    avg_cadence REAL,

    name TEXT,
    description TEXT,
    completed BOOLEAN NOT NULL DEFAULT 1,
    source TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (user_id) REFERENCES user_profile(id)
);

-- Sync status: exactly one row per known source
CREATE TABLE IF NOT EXISTS sync_status (
    source TEXT PRIMARY KEY,
    last_sync_time TEXT,
    last_sync_status TEXT NOT NULL DEFAULT 'pending',  -- pending, success, error
    last_sync_error TEXT,
    failed_chunks INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for biometrics
CREATE INDEX IF NOT EXISTS idx_biometrics_user_date ON biometrics(user_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_biometrics_date ON biometrics(date DESC);

-- Indexes for activities
CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities(user_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type);
CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time DESC);
`
