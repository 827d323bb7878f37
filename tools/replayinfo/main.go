package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/infrastructure/storage"
)

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}

	rec, err := load(os.Args[2])
	if err != nil {
		fmt.Printf("Cannot read replay: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		printInfo(rec)
	case "roster":
		printRoster(rec)
	case "actions":
		printActions(rec)
	default:
		printHelp()
	}
}

func load(path string) (*domain.ReplaySession, error) {
	svc := &storage.ReplayService{}
	return svc.Load(path)
}

func printInfo(rec *domain.ReplaySession) {
	fmt.Printf("Room:    %s\n", rec.RoomID)
	fmt.Printf("Seed:    %d\n", rec.Seed)
	fmt.Printf("Started: %s\n", time.Unix(rec.Timestamp, 0).Format(time.RFC3339))
	fmt.Printf("Players: %d\n", len(rec.Roster))
	fmt.Printf("Actions: %d\n", len(rec.Actions))
}

func printRoster(rec *domain.ReplaySession) {
	for _, p := range rec.Roster {
		kind := "human"
		if p.IsBot {
			kind = "bot"
		}
		fmt.Printf("%-12s %-16s %-8s %s\n", p.ID, p.Name, p.Team, kind)
	}
}

func printActions(rec *domain.ReplaySession) {
	for _, a := range rec.Actions {
		fmt.Printf("#%-4d %-12s %-8s %s\n", a.Seq, a.PlayerID, a.Action, a.Payload)
	}
}

func printHelp() {
	fmt.Println(`Replay Utility - просмотр файлов .gfrp
Commands:
  info <file>     - комната, зерно, время старта и размеры записи
  roster <file>   - участники партии
  actions <file>  - команды игроков по порядку`)
}
