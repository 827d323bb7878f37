package engine

import (
	"fmt"
	"time"

	"github.com/Igoorx/godfield-flash/pkg/api"

	"github.com/sirupsen/logrus"
)

// maxRoomLogs - сколько последних строк лога держит комната.
const maxRoomLogs = 50

// AddLog добавляет строку в историю комнаты и дублирует ее в логгер.
func (r *Room) AddLog(text, logType string) {
	now := time.Now()
	r.Logs = append(r.Logs, api.LogEntry{
		ID:        fmt.Sprintf("%s_%d", r.ID, now.UnixNano()),
		Text:      text,
		Type:      logType,
		Timestamp: now.UnixMilli(),
	})
	if len(r.Logs) > maxRoomLogs {
		r.Logs = r.Logs[len(r.Logs)-maxRoomLogs:]
	}
	r.log.WithFields(logrus.Fields{
		"component": "game_log",
		"log_type":  logType,
	}).Info(text)
}
