package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"octoarena/game"
)

// 事件名（与 JSON 中 eventName 字段一致）
const (
	EventRegisterUser = "register_user"
	EventStartGame    = "start_game"
	EventUpdateState  = "update_state"
	EventError        = "error"
)

// ErrUnknownEvent 无法识别的 eventName
var ErrUnknownEvent = errors.New("protocol: unknown event")

// RegisterUserParams 客户端加入房间
// 示例：{"eventName":"register_user","roomName":"room-1","color":"red","userName":"alice"}
type RegisterUserParams struct {
	EventName string `json:"eventName"`
	RoomName  string `json:"roomName"`
	Color     string `json:"color"`
	UserName  string `json:"userName"`
}

// RegisterUserResponse 房间内广播：新注册的玩家与房间全部玩家
type RegisterUserResponse struct {
	EventName        string             `json:"eventName"`
	RegisteredPlayer game.Descriptor    `json:"registeredPlayer"`
	AllPlayers       []game.PlayerEntry `json:"allPlayers"`
	GamePhase        game.Phase         `json:"gamePhase"`
}

// StartGameParams 管理员开始游戏
type StartGameParams struct {
	EventName string `json:"eventName"`
	RoomName  string `json:"roomName"`
}

// StartGameResponse 房间内广播：游戏开始
type StartGameResponse struct {
	EventName  string             `json:"eventName"`
	AllPlayers []game.PlayerEntry `json:"allPlayers"`
}

// UpdateStateParams 本地玩家一批状态；服务端原样转发为 UpdateStateResponse
type UpdateStateParams struct {
	EventName   string             `json:"eventName"`
	PlayerID    string             `json:"playerId"`
	UpdateQueue []game.EntityState `json:"updateQueue"`
}

// UpdateStateResponse 与请求结构相同
type UpdateStateResponse = UpdateStateParams

// ErrorResponse 请求被拒绝
type ErrorResponse struct {
	EventName string `json:"eventName"`
	Message   string `json:"message"`
}

type envelope struct {
	EventName string `json:"eventName"`
}

// Encode 序列化消息并补齐 eventName
func Encode(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case *RegisterUserParams:
		m.EventName = EventRegisterUser
	case *RegisterUserResponse:
		m.EventName = EventRegisterUser
	case *StartGameParams:
		m.EventName = EventStartGame
	case *StartGameResponse:
		m.EventName = EventStartGame
	case *UpdateStateParams:
		m.EventName = EventUpdateState
	case *ErrorResponse:
		m.EventName = EventError
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, msg)
	}
	return json.Marshal(msg)
}

// DecodeRequest 解析客户端发往服务端的消息
func DecodeRequest(payload []byte) (any, error) {
	name, err := eventName(payload)
	if err != nil {
		return nil, err
	}
	var out any
	switch name {
	case EventRegisterUser:
		out = &RegisterUserParams{}
	case EventStartGame:
		out = &StartGameParams{}
	case EventUpdateState:
		out = &UpdateStateParams{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// DecodeResponse 解析服务端广播给客户端的消息
func DecodeResponse(payload []byte) (any, error) {
	name, err := eventName(payload)
	if err != nil {
		return nil, err
	}
	var out any
	switch name {
	case EventRegisterUser:
		out = &RegisterUserResponse{}
	case EventStartGame:
		out = &StartGameResponse{}
	case EventUpdateState:
		out = &UpdateStateResponse{}
	case EventError:
		out = &ErrorResponse{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

func eventName(payload []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	return env.EventName, nil
}
