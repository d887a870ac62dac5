package sampledata

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// File constants.
const (
	fileExtension       = ".csv"
	filePermission      = 0o600
	directoryPermission = 0o750
)

// Generation constants.
const (
	defaultSeedStream   = 0x5eed
	baseMembersMin      = 80
	baseMembersRange    = 120
	dailyGrowthMax      = 9
	entriesPerUserMax   = 3
	activityScoreMax    = 500
	matchPlayersMin     = 10
	matchPlayersRange   = 11
	eventPlayersMax     = 60
	unfinishedMatchOdds = 20 // one in N matches has no winner
)

// Runner constants.
const (
	PercentageMultiplier = 100
	rateTolerance        = 0.05
	defaultTimeout       = 30 * time.Second
)

var (
	categories  = []string{"chat", "voice"}
	teams       = []string{"red", "blue"}
	games       = []string{"valorant", "lol", "overwatch"}
	departments = []string{"management", "moderation", "events", "design", "guest"}
	ranks       = []string{"lead", "member", "trainee"}
)

// header spellings per dataset kind, English then Korean.
var headers = map[string][2][]string{
	"members":  {{"date", "count"}, {"날짜", "인원수"}},
	"activity": {{"name", "type", "score"}, {"유저", "유형", "활동량"}},
	"events":   {{"name", "period", "participants"}, {"이벤트", "기간", "참여자 수"}},
	"staff":    {{"name", "department", "rank"}, {"이름", "부서", "직급"}},
	"matches":  {{"date", "game", "participants", "winner"}, {"날짜", "게임", "참가자 수", "승리팀"}},
}

// file names per dataset kind, English then Korean.
var fileNames = map[string][2]string{
	"members":  {"members", "인원수"},
	"activity": {"activity", "활동량"},
	"events":   {"events", "이벤트"},
	"staff":    {"staff", "운영진"},
	"matches":  {"matches", "내전"},
}
