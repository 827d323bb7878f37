package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Igoorx/godfield-flash/internal/domain"
)

const (
	MagicHeader string = `GFRP` // 4 байта
	Version1    uint32 = 1

	// Расширение файлов реплеев
	FileExt = ".gfrp"
)

// ReplayFileHeader - фиксированная часть файла.
// binary.Write пишет ее целиком: тут только массивы и числа.
type ReplayFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Seed        int64   // 8 байт
	Timestamp   int64   // 8 байт
	RoomIDLen   uint8   // 1 байт
	PlayerCount uint8   // 1 байт
	ActionCount int32   // 4 байта
}

// PlayerHeader - заголовок записи участника. За ним идут id, имя и команда.
type PlayerHeader struct {
	IDLen   uint8
	NameLen uint8
	TeamLen uint8
	IsBot   uint8
}

// ActionHeader - заголовок каждой записи действия.
type ActionHeader struct {
	Seq        int32  // 4
	ActionType uint8  // 1
	PlayerLen  uint8  // 1
	PayloadLen uint16 // 2
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Save пишет реплей в SaveDir и возвращает путь к файлу.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_%s_%d%s", session.RoomID, session.Timestamp, FileExt)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeBinary(w, session); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, nil
}

// shortString проверяет, что строка влезает в однобайтовую длину.
func shortString(what, s string) ([]byte, error) {
	b := []byte(s)
	if len(b) > 255 {
		return nil, fmt.Errorf("%s too long: %d", what, len(b))
	}
	return b, nil
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	roomID, err := shortString("room id", s.RoomID)
	if err != nil {
		return err
	}
	if len(s.Roster) > 255 {
		return fmt.Errorf("roster too large: %d", len(s.Roster))
	}

	// 1. Заголовок
	header := ReplayFileHeader{
		Version:     Version1,
		Seed:        s.Seed,
		Timestamp:   s.Timestamp,
		RoomIDLen:   uint8(len(roomID)),
		PlayerCount: uint8(len(s.Roster)),
		ActionCount: int32(len(s.Actions)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(roomID); err != nil {
		return err
	}

	// 2. Состав
	for _, p := range s.Roster {
		id, err := shortString("player id", p.ID)
		if err != nil {
			return err
		}
		name, err := shortString("player name", p.Name)
		if err != nil {
			return err
		}
		team, err := shortString("team", string(p.Team))
		if err != nil {
			return err
		}
		ph := PlayerHeader{
			IDLen:   uint8(len(id)),
			NameLen: uint8(len(name)),
			TeamLen: uint8(len(team)),
		}
		if p.IsBot {
			ph.IsBot = 1
		}
		if err := binary.Write(w, binary.LittleEndian, &ph); err != nil {
			return err
		}
		for _, part := range [][]byte{id, name, team} {
			if _, err := w.Write(part); err != nil {
				return err
			}
		}
	}

	// 3. Действия
	for _, act := range s.Actions {
		playerID, err := shortString("player id", act.PlayerID)
		if err != nil {
			return err
		}

		payloadLen := len(act.Payload)
		if payloadLen > 65535 {
			return fmt.Errorf("payload too long: %d", payloadLen)
		}

		actHeader := ActionHeader{
			Seq:        int32(act.Seq),
			ActionType: uint8(act.Action),
			PlayerLen:  uint8(len(playerID)),
			PayloadLen: uint16(payloadLen),
		}
		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}

		if _, err := w.Write(playerID); err != nil {
			return err
		}
		if payloadLen > 0 {
			if _, err := w.Write(act.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
