package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"werewolf/internal/domain"
	"werewolf/internal/engine"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerID() string
	Close() error
}

// SnapshotStore persists match state at phase boundaries.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, g *domain.Game) error
	SaveResult(ctx context.Context, gameID string, v *domain.Victory, rounds int) error
}

// Prompt is sent to the player who has to answer it.
type Prompt struct {
	ID      string               `json:"id"`
	Request engine.ChoiceRequest `json:"request"`
}

// Notice is a line of narration or relay chat.
type Notice struct {
	Text string `json:"text"`
}

// ErrSessionClosed is returned to the engine when the room shuts down.
var ErrSessionClosed = errors.New("session closed")

type pendingPrompt struct {
	prompt   Prompt
	playerID string
	answer   chan []string
}

// GameSession wraps a lobby and, once started, the match engine. It is the
// engine's prompter, notifier, event sink and observer.
type GameSession struct {
	lobby     *domain.Lobby
	mu        sync.RWMutex
	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger
	opts      engine.Options
	store     SnapshotStore
	rng       *rand.Rand

	engine   *engine.Engine
	snapshot *domain.Snapshot
	roles    map[string]domain.Role
	result   *domain.Victory
	cancel   context.CancelFunc
	finished chan struct{}

	prompts   map[string]*pendingPrompt // prompt id -> prompt
	promptsMu sync.Mutex

	// Outbound queue, so clients see events, notices and prompts in order
	outbox chan outbound
	done   chan struct{}
}

// outbound is one message for one player, or for everyone when to is empty.
type outbound struct {
	to  string
	msg interface{}
}

// SessionConfig carries what a new session needs from the hub.
type SessionConfig struct {
	Lobby   domain.LobbySettings
	Options engine.Options
	Store   SnapshotStore
	Rand    *rand.Rand
}

// NewGameSession creates a new game session
func NewGameSession(roomCode string, cfg SessionConfig, logger *slog.Logger) *GameSession {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	session := &GameSession{
		lobby:    domain.NewLobby(roomCode, cfg.Lobby),
		clients:  make(map[string]ClientConnection),
		logger:   logger.With("roomCode", roomCode),
		opts:     cfg.Options,
		store:    cfg.Store,
		rng:      rng,
		roles:    make(map[string]domain.Role),
		prompts:  make(map[string]*pendingPrompt),
		finished: make(chan struct{}),
		outbox:   make(chan outbound, 512),
		done:     make(chan struct{}),
	}

	// Start event broadcaster
	go session.eventLoop()

	return session
}

// GetRoomCode returns the room code
func (s *GameSession) GetRoomCode() string {
	return s.lobby.ID
}

// GetCreatedAt returns when the room was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.lobby.CreatedAt
}

// GetPlayerCount returns the number of seated players
func (s *GameSession) GetPlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lobby.Members)
}

// GetPhase returns the phase of the last completed step, or lobby
func (s *GameSession) GetPhase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return domain.PhaseLobby
	}
	return s.snapshot.Phase
}

// CanJoin checks if a new player can join the room
func (s *GameSession) CanJoin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.lobby.Started && len(s.lobby.Members) < s.lobby.Settings.MaxPlayers
}

// IsMember reports whether the player has a seat
func (s *GameSession) IsMember(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lobby.Members[playerID]
	return ok
}

// Finished is closed when the match engine returns.
func (s *GameSession) Finished() <-chan struct{} {
	return s.finished
}

// Result returns the victory once the match has ended.
func (s *GameSession) Result() *domain.Victory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// RegisterClient registers a client connection for a player
func (s *GameSession) RegisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[playerID] = client
}

// UnregisterClient removes a client connection
func (s *GameSession) UnregisterClient(playerID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, playerID)
}

// GetClientCount returns the number of open connections
func (s *GameSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// GetClient returns the client for a player
func (s *GameSession) GetClient(playerID string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[playerID]
	return client, ok
}

// AddPlayer seats a player in the lobby
func (s *GameSession) AddPlayer(playerID, nickname string) (*domain.LobbyMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.lobby.AddMember(playerID, nickname)
	if err != nil {
		return nil, err
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.lobby.ID, s.lobby.GetLobbyState()))
	return member, nil
}

// RemovePlayer removes a player from the lobby
func (s *GameSession) RemovePlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lobby.RemoveMember(playerID); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.lobby.ID, s.lobby.GetLobbyState()))
	return nil
}

// DisconnectPlayer marks a player as disconnected. Before the match starts
// the seat is freed; afterwards it is kept for a reconnect.
func (s *GameSession) DisconnectPlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lobby.Started {
		if err := s.lobby.RemoveMember(playerID); err == nil {
			s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.lobby.ID, s.lobby.GetLobbyState()))
		}
		return
	}
	if err := s.lobby.SetStatus(playerID, domain.StatusDisconnected); err == nil {
		s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.lobby.ID, s.lobby.GetLobbyState()))
	}
}

// ReconnectPlayer marks a seated player as connected again
func (s *GameSession) ReconnectPlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lobby.SetStatus(playerID, domain.StatusConnected); err != nil {
		return err
	}
	s.queueEvent(domain.NewEvent(domain.EventPlayerReconnected, s.lobby.ID, s.lobby.GetLobbyState()))
	return nil
}

// StartGame deals the roles and starts the match (host only). An empty deck
// uses the default composition for the table size.
func (s *GameSession) StartGame(playerID string, deck []domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lobby.IsHost(playerID) {
		return domain.ErrNotHost
	}
	if s.lobby.Started {
		return domain.ErrGameAlreadyStarted
	}
	if !s.lobby.CanStart() {
		return domain.ErrNotEnoughPlayers
	}

	members := s.lobby.Ordered()
	if len(deck) == 0 {
		deck = BuildDeck(len(members))
	}
	players, err := Deal(members, deck, s.rng)
	if err != nil {
		return err
	}
	game, err := domain.NewGame(s.lobby.ID, players)
	if err != nil {
		return err
	}

	s.engine = engine.New(game, engine.Deps{
		Prompter: s,
		Notifier: s,
		Events:   s,
		Observer: s,
		Logger:   s.logger,
		Rand:     rand.New(rand.NewSource(s.rng.Int63())),
	}, s.opts)
	s.lobby.Started = true
	snap := game.Snapshot()
	s.snapshot = &snap
	for _, p := range game.Players {
		s.roles[p.ID] = p.Role
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.queueEvent(domain.NewEvent(domain.EventGameStarted, s.lobby.ID, s.lobby.GetLobbyState()))
	go s.run(ctx, s.engine)

	s.logger.Info("match starting", "players", len(players))
	return nil
}

func (s *GameSession) run(ctx context.Context, eng *engine.Engine) {
	defer close(s.finished)
	v, err := eng.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("match aborted", "error", err)
		}
		return
	}
	s.mu.Lock()
	s.result = v
	s.mu.Unlock()
}

// Prompt implements engine.Prompter. The prompt stays pending until the
// player answers, the deadline passes or the room closes.
func (s *GameSession) Prompt(ctx context.Context, playerID string, req engine.ChoiceRequest) ([]string, error) {
	p := &pendingPrompt{
		prompt:   Prompt{ID: uuid.NewString(), Request: req},
		playerID: playerID,
		answer:   make(chan []string, 1),
	}
	s.promptsMu.Lock()
	s.prompts[p.prompt.ID] = p
	s.promptsMu.Unlock()
	defer func() {
		s.promptsMu.Lock()
		delete(s.prompts, p.prompt.ID)
		s.promptsMu.Unlock()
	}()

	s.queue(playerID, &p.prompt)

	select {
	case picked := <-p.answer:
		return picked, nil
	case <-ctx.Done():
		return nil, engine.ErrTimeout
	case <-s.done:
		return nil, ErrSessionClosed
	}
}

// Answer resolves a pending prompt. Only the prompted player can answer and
// only once.
func (s *GameSession) Answer(playerID, promptID string, selected []string) error {
	s.promptsMu.Lock()
	p, ok := s.prompts[promptID]
	if ok && p.playerID == playerID {
		delete(s.prompts, promptID)
	}
	s.promptsMu.Unlock()

	if !ok || p.playerID != playerID {
		return domain.ErrPromptNotFound
	}
	p.answer <- append([]string(nil), selected...)
	return nil
}

// PendingPrompts returns the open prompts of a player, for reconnects.
func (s *GameSession) PendingPrompts(playerID string) []Prompt {
	s.promptsMu.Lock()
	defer s.promptsMu.Unlock()
	var out []Prompt
	for _, p := range s.prompts {
		if p.playerID == playerID {
			out = append(out, p.prompt)
		}
	}
	return out
}

// Notify implements engine.Notifier.
func (s *GameSession) Notify(_ context.Context, audience []string, message string) error {
	n := &Notice{Text: message}
	if audience == nil {
		s.queue("", n)
		return nil
	}
	for _, id := range audience {
		s.queue(id, n)
	}
	return nil
}

// Publish implements engine.EventSink.
func (s *GameSession) Publish(event *domain.GameEvent) {
	s.queueEvent(event)
}

// PhaseCompleted implements engine.Observer. It runs on the engine goroutine.
func (s *GameSession) PhaseCompleted(ctx context.Context, g *domain.Game) {
	snap := g.Snapshot()
	s.mu.Lock()
	s.snapshot = &snap
	for _, p := range g.Players {
		s.roles[p.ID] = p.Role
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(ctx, g); err != nil {
		s.logger.Warn("failed to save snapshot", "round", g.Round, "phase", g.Phase, "error", err)
	}
	if g.Phase == domain.PhaseEnded && g.Victory != nil {
		if err := s.store.SaveResult(ctx, g.ID, g.Victory, g.Round); err != nil {
			s.logger.Warn("failed to save result", "error", err)
		}
	}
}

// Say sends chat into the private line the player is part of.
func (s *GameSession) Say(ctx context.Context, playerID, text string) error {
	s.mu.RLock()
	eng := s.engine
	s.mu.RUnlock()
	if eng == nil {
		return domain.ErrInvalidPhase
	}
	return eng.Relays().Say(ctx, playerID, text)
}

// GetGameState returns the current state for a (re)connecting player
func (s *GameSession) GetGameState(playerID string) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := map[string]interface{}{
		"lobby":   s.lobby.GetLobbyState(),
		"started": s.lobby.Started,
	}
	if s.snapshot != nil {
		state["game"] = s.snapshot
	}
	if role, ok := s.roles[playerID]; ok {
		state["role"] = role
	}
	if s.result != nil {
		state["victory"] = s.result
	}
	return state
}

// queueEvent adds an event to the broadcast queue. Player-specific events
// only go to that player.
func (s *GameSession) queueEvent(event *domain.GameEvent) {
	s.queue(event.PlayerID, event)
}

func (s *GameSession) queue(to string, msg interface{}) {
	select {
	case s.outbox <- outbound{to: to, msg: msg}:
	default:
		s.logger.Warn("outbound queue full, dropping message", "playerID", to)
	}
}

// eventLoop delivers queued messages to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case out := <-s.outbox:
			if out.to != "" {
				s.sendTo(out.to, out.msg)
			} else {
				s.broadcast(out.msg)
			}
		}
	}
}

func (s *GameSession) sendTo(playerID string, message interface{}) {
	client, ok := s.GetClient(playerID)
	if !ok {
		return
	}
	if err := client.Send(message); err != nil {
		s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
	}
}

func (s *GameSession) broadcast(message interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for playerID, client := range s.clients {
		if err := client.Send(message); err != nil {
			s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
		}
	}
}

// Close shuts down the session and stops a running match
func (s *GameSession) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
