package store

// SchemaVersion is the current database schema version
const SchemaVersion = 2

const schema = `
-- User profiles (single row in practice, keyed by server user id)
CREATE TABLE IF NOT EXISTS user_profiles (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    locale TEXT NOT NULL DEFAULT '',
    goal_calories INTEGER NOT NULL DEFAULT 0,
    goal_protein_g REAL NOT NULL DEFAULT 0,
    goal_carbs_g REAL NOT NULL DEFAULT 0,
    goal_fat_g REAL NOT NULL DEFAULT 0,
    macro_ratio TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Food catalog cache
CREATE TABLE IF NOT EXISTS foods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    brand TEXT NOT NULL DEFAULT '',
    barcode TEXT NOT NULL DEFAULT '',
    calories INTEGER NOT NULL DEFAULT 0,
    protein_g REAL NOT NULL DEFAULT 0,
    carbs_g REAL NOT NULL DEFAULT 0,
    fat_g REAL NOT NULL DEFAULT 0,
    serving_size REAL NOT NULL DEFAULT 0,
    serving_unit TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    verified INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name);
CREATE INDEX IF NOT EXISTS idx_foods_barcode ON foods(barcode);

-- One nutrition aggregate per date
CREATE TABLE IF NOT EXISTS daily_diaries (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL UNIQUE,
    goal_calories INTEGER NOT NULL DEFAULT 0,
    goal_protein_g REAL NOT NULL DEFAULT 0,
    goal_carbs_g REAL NOT NULL DEFAULT 0,
    goal_fat_g REAL NOT NULL DEFAULT 0,
    consumed_calories INTEGER NOT NULL DEFAULT 0,
    consumed_protein_g REAL NOT NULL DEFAULT 0,
    consumed_carbs_g REAL NOT NULL DEFAULT 0,
    consumed_fat_g REAL NOT NULL DEFAULT 0,
    macro_ratio TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Logged food items; id is a temporary UUID until the server assigns one
CREATE TABLE IF NOT EXISTS diary_food_entries (
    id TEXT PRIMARY KEY,
    diary_id TEXT NOT NULL,
    food_id TEXT NOT NULL DEFAULT '',
    food_name TEXT NOT NULL,
    meal_type TEXT NOT NULL DEFAULT 'snack',
    quantity REAL NOT NULL DEFAULT 1,
    unit TEXT NOT NULL DEFAULT '',
    calories INTEGER NOT NULL DEFAULT 0,
    protein_g REAL NOT NULL DEFAULT 0,
    carbs_g REAL NOT NULL DEFAULT 0,
    fat_g REAL NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (diary_id) REFERENCES daily_diaries(id) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_entries_diary ON diary_food_entries(diary_id);

-- Workout sessions; at most one open session (ended_at IS NULL)
CREATE TABLE IF NOT EXISTS activity_diaries (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    ended_at DATETIME,
    notes TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_activity_date ON activity_diaries(date);

-- Exercises within a session; sets is an ordered JSON array of {reps, weight_kg}
CREATE TABLE IF NOT EXISTS activity_entries (
    id TEXT PRIMARY KEY,
    diary_id TEXT NOT NULL,
    exercise_name TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    sets TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (diary_id) REFERENCES activity_diaries(id) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_activity_entries_diary ON activity_entries(diary_id);

-- Durable offline mutation queue; rows are never deleted
CREATE TABLE IF NOT EXISTS offline_queue (
    id TEXT PRIMARY KEY,
    action_type TEXT NOT NULL,
    payload JSON NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
    error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_queue_status ON offline_queue(status, created_at);

-- Temporary UUID -> server-assigned id, written when a replay succeeds
CREATE TABLE IF NOT EXISTS id_mappings (
    temp_id TEXT PRIMARY KEY,
    server_id TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    mapped_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Schema versioning
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
