package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"octoarena/game"
	"octoarena/logging"
)

var (
	// ErrUnknownColor 颜色不在可选列表中
	ErrUnknownColor = errors.New("server: unknown color")
	// ErrUnknownPlayer 找不到玩家
	ErrUnknownPlayer = errors.New("server: unknown player")
	// ErrUnknownRoom 找不到房间
	ErrUnknownRoom = errors.New("server: unknown room")
	// ErrBadRequest 缺少必要字段
	ErrBadRequest = errors.New("server: bad request")
)

// 新玩家出生点
var spawnPosition = game.Coordinate{X: 400, Y: 400}

// RoomRecord 持久化的房间
type RoomRecord struct {
	Name      string     `json:"name"`
	GamePhase game.Phase `json:"gamePhase"`
}

// PlayerRecord 持久化的玩家及其加油站布局
type PlayerRecord struct {
	Descriptor     game.Descriptor        `json:"descriptor"`
	FuelingStation game.StationDescriptor `json:"fuelingStation"`
}

func (p PlayerRecord) entry() game.PlayerEntry {
	st := p.FuelingStation
	return game.PlayerEntry{Descriptor: p.Descriptor, FuelingStation: &st}
}

type schema struct {
	Players []PlayerRecord `json:"players"`
	Rooms   []RoomRecord   `json:"rooms"`
}

// Registry 房间与玩家的平面文件登记表；每次修改后整体重写
type Registry struct {
	mu   sync.Mutex
	path string // 为空时只保存在内存
	data schema
	cfg  game.Config
}

// OpenRegistry 打开（或创建）登记文件
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, cfg: game.DefaultConfig()}
	if path == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := r.save(); err != nil {
			return nil, err
		}
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if err := json.Unmarshal(b, &r.data); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return r, nil
}

// Register 获取或创建房间与玩家；房间的第一个注册者为管理员
func (r *Registry) Register(roomName, userName, color string) (game.Descriptor, []game.PlayerEntry, game.Phase, error) {
	if roomName == "" || userName == "" {
		return game.Descriptor{}, nil, "", fmt.Errorf("%w: room and user name required", ErrBadRequest)
	}
	if !game.ValidColor(color) {
		return game.Descriptor{}, nil, "", fmt.Errorf("%w: %q", ErrUnknownColor, color)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, existed := r.getOrCreateRoom(roomName)
	rec, created := r.getOrCreatePlayer(roomName, userName, color, !existed)
	if !existed || created {
		if err := r.save(); err != nil {
			return game.Descriptor{}, nil, "", err
		}
	}
	return rec.Descriptor, r.entries(roomName), room.GamePhase, nil
}

func (r *Registry) getOrCreateRoom(name string) (RoomRecord, bool) {
	for _, rm := range r.data.Rooms {
		if rm.Name == name {
			return rm, true
		}
	}
	rm := RoomRecord{Name: name, GamePhase: game.PhaseLobby}
	r.data.Rooms = append(r.data.Rooms, rm)
	logging.Log.Infow("room created", "room", name)
	return rm, false
}

func (r *Registry) getOrCreatePlayer(room, name, color string, isAdmin bool) (PlayerRecord, bool) {
	n := 0
	for _, p := range r.data.Players {
		if p.Descriptor.RoomName != room {
			continue
		}
		if p.Descriptor.Name == name {
			return p, false
		}
		n++
	}
	id := uuid.NewString()
	rec := PlayerRecord{
		Descriptor: game.Descriptor{
			ID:       id,
			Name:     name,
			IsAdmin:  isAdmin,
			Color:    color,
			RoomName: room,
			Size:     r.cfg.PlayerSize,
			InitialState: game.EntityState{
				Position: spawnPosition,
			},
		},
		FuelingStation: game.StationDescriptor{PlayerID: id, Position: r.stationPosition(n)},
	}
	r.data.Players = append(r.data.Players, rec)
	logging.Log.Infow("player created", "room", room, "name", name, "id", id, "admin", isAdmin)
	return rec, true
}

// stationPosition 加油站沿围墙内圈均匀分布，第 n 个玩家占第 n 个位置
func (r *Registry) stationPosition(n int) game.Coordinate {
	const slots = 8
	center := game.Coordinate{X: r.cfg.CanvasSize.Width / 2, Y: r.cfg.CanvasSize.Height / 2}
	radius := r.cfg.OctagonSize * 0.35
	angle := float64(n%slots) * 2 * math.Pi / slots
	return game.Coordinate{
		X: math.Round(center.X + radius*math.Cos(angle) - 11),
		Y: math.Round(center.Y + radius*math.Sin(angle) - 25),
	}
}

func (r *Registry) entries(room string) []game.PlayerEntry {
	var out []game.PlayerEntry
	for _, p := range r.data.Players {
		if p.Descriptor.RoomName == room {
			out = append(out, p.entry())
		}
	}
	return out
}

// StartGame 房间进入 run_game 阶段并返回全部玩家
func (r *Registry) StartGame(room string) ([]game.PlayerEntry, error) {
	if err := r.SetPhase(room, game.PhaseRunGame); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries(room), nil
}

// SetPhase 修改房间阶段
func (r *Registry) SetPhase(room string, phase game.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.data.Rooms {
		if r.data.Rooms[i].Name == room {
			r.data.Rooms[i].GamePhase = phase
			return r.save()
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRoom, room)
}

// Room 查询房间及其玩家
func (r *Registry) Room(name string) (RoomRecord, []game.PlayerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.data.Rooms {
		if rm.Name == name {
			return rm, r.entries(name), true
		}
	}
	return RoomRecord{}, nil, false
}

// RoomOf 玩家所在房间
func (r *Registry) RoomOf(playerID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data.Players {
		if p.Descriptor.ID == playerID {
			return p.Descriptor.RoomName, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
}

// save 写临时文件后改名，避免半截文件（调用方持有锁）
func (r *Registry) save() error {
	if r.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".registry-*")
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
