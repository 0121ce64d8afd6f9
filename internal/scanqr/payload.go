package scanqr

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParsePayload: QRの中身を (user_id, event_id) に解決する。
// まずJSONオブジェクト {"user_id":..,"event_id":..} として読み、
// JSONオブジェクトとして読めない場合のみ "user:1|event:2" 形式
// （`|` 区切り・各セグメントは最初の `:` でkey/value）にフォールバックする。
// どちらの経路でも両IDが正の整数にならなければ INVALID_PAYLOAD。
func ParsePayload(raw string) (uint64, uint64, error) {
	raw = strings.TrimSpace(raw)

	var userID, eventID uint64

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		userID = coerceID(obj["user_id"])
		eventID = coerceID(obj["event_id"])
	} else {
		for _, seg := range strings.Split(raw, "|") {
			kv := strings.SplitN(seg, ":", 2)
			if len(kv) != 2 {
				continue
			}
			// キーは大文字小文字を区別する
			switch strings.TrimSpace(kv[0]) {
			case "user":
				userID = coerceID(strings.TrimSpace(kv[1]))
			case "event":
				eventID = coerceID(strings.TrimSpace(kv[1]))
			}
		}
	}

	if userID == 0 || eventID == 0 {
		return 0, 0, errInvalidPayload()
	}
	return userID, eventID, nil
}

// coerceID: JSON数値・数値文字列を正整数へ。変換できなければ 0。
func coerceID(v any) uint64 {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != math.Trunc(t) {
			return 0
		}
		return uint64(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil || n <= 0 {
			return 0
		}
		return uint64(n)
	default:
		return 0
	}
}
