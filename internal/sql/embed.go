package sql

import "embed"

// Migrations holds the idempotent schema migrations, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/list_episodes.sql
var ListEpisodes string

//go:embed queries/list_care_targets.sql
var ListCareTargets string

//go:embed queries/list_outcome_scores.sql
var ListOutcomeScores string

//go:embed queries/insert_episode.sql
var InsertEpisode string

//go:embed queries/insert_care_target.sql
var InsertCareTarget string
