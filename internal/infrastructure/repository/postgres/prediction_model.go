package postgres

type predictionTableModel struct {
	UserID     int64  `db:"user_id"`
	IssueName  string `db:"issue_name"`
	LotteryID  int64  `db:"lottery_id"`
	PlaytypeID int64  `db:"playtype_id"`
	Numbers    string `db:"numbers"`
}

var predictionColumns = []string{"user_id", "issue_name", "lottery_id", "playtype_id", "numbers"}
