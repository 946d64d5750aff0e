package expertapi

import (
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const (
	ActionLeaderboard = 40030
	ActionDetail      = 40016
)

// requestHeader is the fixed app fingerprint the upstream expects. Field
// order is part of the wire format.
type requestHeader struct {
	Action          string `json:"action"`
	AppVersion      string `json:"appVersion"`
	AppVersionCode  int    `json:"appVersionCode"`
	Brand           string `json:"brand"`
	CmdID           int    `json:"cmdId"`
	CmdName         string `json:"cmdName"`
	IDFA            string `json:"idfa"`
	IMEI            string `json:"imei"`
	PhoneModel      string `json:"phoneModel"`
	PhoneName       string `json:"phoneName"`
	PlatformCode    string `json:"platformCode"`
	PlatformVersion string `json:"platformVersion"`
	Token           string `json:"token"`
	UDomain         string `json:"uDomain"`
	UserID          string `json:"userId"`
	UserType        string `json:"userType"`
	UUID            string `json:"uuid"`
}

func newRequestHeader(action int, token string) requestHeader {
	return requestHeader{
		Action:          strconv.Itoa(action),
		AppVersion:      "4.0.6",
		AppVersionCode:  40006,
		Brand:           "szcapp",
		CmdID:           10024,
		CmdName:         "app_ald1",
		IDFA:            "170976fa8bb848a7579",
		IMEI:            "",
		PhoneModel:      "V2324HA",
		PhoneName:       "vivo",
		PlatformCode:    "Android",
		PlatformVersion: "12",
		Token:           token,
		UDomain:         "17chdd.com",
		UserID:          "18838011",
		UserType:        "1",
		UUID:            "1ab3cdb1-c5df-3973-968c-b5119b2958fd",
	}
}

// requestEnvelope carries the body as an embedded JSON string.
type requestEnvelope struct {
	Body   string        `json:"body"`
	Header requestHeader `json:"header"`
}

func buildEnvelope(action int, token string, body any) ([]byte, error) {
	rawBody, err := sonic.Marshal(body)
	if err != nil {
		return nil, crerr.Wrapf(err, "encode body for action %d", action)
	}
	raw, err := sonic.Marshal(requestEnvelope{
		Body:   string(rawBody),
		Header: newRequestHeader(action, token),
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "encode envelope for action %d", action)
	}
	return raw, nil
}

type leaderboardBody struct {
	IssueCount int    `json:"issueCount"`
	Limit      int    `json:"limit"`
	LotteryID  string `json:"lotteryId"`
	PlayTypeID int64  `json:"playTypeId"`
	SortType   int    `json:"sortType"`
}

type detailBody struct {
	IssueName       string `json:"issueName"`
	LotteryID       string `json:"lotteryId"`
	RecomTenantCode string `json:"recomTenantCode"`
	RecomUserID     string `json:"recomUserId"`
}
