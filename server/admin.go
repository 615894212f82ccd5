package server

import (
	"encoding/json"
	"net/http"

	"octoarena/game"
	"octoarena/logging"
)

// HandleAdminRoom 提供房间登记信息的读取与阶段修改
// GET /admin/room?room=room-1  返回房间阶段与玩家
// POST /admin/room?room=room-1 以 JSON 载荷修改阶段，如 {"gamePhase":"lobby"}
func (m *RoomManager) HandleAdminRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}

	switch r.Method {
	case http.MethodGet:
		rec, players, ok := m.registry.Room(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		online := 0
		if live, ok := m.lookupRoom(roomID); ok {
			online = live.Size()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"room":      rec.Name,
			"gamePhase": rec.GamePhase,
			"players":   players,
			"online":    online,
		})
		return
	case http.MethodPost:
		var body struct {
			GamePhase game.Phase `json:"gamePhase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.GamePhase != game.PhaseLobby && body.GamePhase != game.PhaseRunGame {
			http.Error(w, "invalid gamePhase", http.StatusBadRequest)
			return
		}
		if err := m.registry.SetPhase(roomID, body.GamePhase); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		logging.Log.Infof("room updated: room=%s phase=%s", roomID, body.GamePhase)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出转发指标与各房间在线数
// GET /metrics
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	rooms := make(map[string]int, len(m.rooms))
	for name, room := range m.rooms {
		rooms[name] = room.Size()
	}
	m.mu.RUnlock()

	payload := map[string]any{
		"rooms":   rooms,
		"metrics": m.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
