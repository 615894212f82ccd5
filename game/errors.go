package game

import "errors"

var (
	// ErrNoSurface 缺少渲染表面，无法初始化场景
	ErrNoSurface = errors.New("game: no rendering surface")
	// ErrNoTransport 本地控制器缺少出站传输
	ErrNoTransport = errors.New("game: no transport")
)
