package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Igoorx/godfield-flash/internal/domain"
)

var ErrInvalidMagic = errors.New("invalid magic")

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(bufio.NewReader(f))
}

func readString(r io.Reader, n uint8) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Заголовок
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, ErrInvalidMagic
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}
	if header.ActionCount < 0 {
		return nil, fmt.Errorf("negative action count: %d", header.ActionCount)
	}

	roomID, err := readString(r, header.RoomIDLen)
	if err != nil {
		return nil, fmt.Errorf("failed to read room id: %w", err)
	}

	session := &domain.ReplaySession{
		RoomID:    roomID,
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		Roster:    make([]domain.ReplayPlayer, header.PlayerCount),
		Actions:   make([]domain.ReplayAction, header.ActionCount),
	}

	// 2. Состав
	for i := range session.Roster {
		var ph PlayerHeader
		if err := binary.Read(r, binary.LittleEndian, &ph); err != nil {
			return nil, fmt.Errorf("failed to read player %d: %w", i, err)
		}
		p := domain.ReplayPlayer{IsBot: ph.IsBot != 0}
		if p.ID, err = readString(r, ph.IDLen); err != nil {
			return nil, err
		}
		if p.Name, err = readString(r, ph.NameLen); err != nil {
			return nil, err
		}
		team, err := readString(r, ph.TeamLen)
		if err != nil {
			return nil, err
		}
		p.Team = domain.Team(team)
		if !p.Team.IsValid() {
			return nil, fmt.Errorf("player %d: invalid team %q", i, team)
		}
		session.Roster[i] = p
	}

	// 3. Действия
	for i := range session.Actions {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("failed to read action %d: %w", i, err)
		}

		act := domain.ReplayAction{
			Seq:    int(ah.Seq),
			Action: domain.ActionType(ah.ActionType),
		}
		if act.PlayerID, err = readString(r, ah.PlayerLen); err != nil {
			return nil, err
		}

		if ah.PayloadLen > 0 {
			act.Payload = make([]byte, ah.PayloadLen)
			if _, err := io.ReadFull(r, act.Payload); err != nil {
				return nil, err
			}
		} else {
			act.Payload = json.RawMessage{}
		}

		session.Actions[i] = act
	}

	return session, nil
}
