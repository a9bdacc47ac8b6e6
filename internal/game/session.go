package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/utils"
	"github.com/sketchwars/sketchwars-backend/internal/words"
)

type EventType string

const (
	EventStart         EventType = "start"
	EventSelectWord    EventType = "select_word"
	EventSubmitDrawing EventType = "submit_drawing"
	EventSubmitGuess   EventType = "submit_guess"
	EventNextRound     EventType = "next_round"
	EventEndGame       EventType = "end_game"
	EventReset         EventType = "reset"
	EventPause         EventType = "pause"
	EventResume        EventType = "resume"
	EventTimerElapsed  EventType = "timer_elapsed"
	EventChat          EventType = "chat"
	EventStroke        EventType = "stroke"
	EventPlayerEvicted EventType = "player_evicted"
)

// Action is one inbound event for a room's session.
type Action struct {
	Type     EventType
	ActorID  string
	Username string
	Word     string
	Guess    string
	Text     string
	Drawing  json.RawMessage
	Stroke   *internal.StrokeBatch
}

type envelope struct {
	action   Action
	timer    *TimerHandle
	reply    chan error
	snap     chan internal.SessionSnapshot
	viewerID string
}

// Deps are the collaborators injected into a session.
type Deps struct {
	Broadcast Broadcaster
	Words     WordProvider
	Store     SessionStore
	Stats     StatsSink
	Roster    Roster
	Bank      *words.Bank
	Timings   Timings
	Log       zerolog.Logger
}

// Session is the per-room actor. A single goroutine owns the GameSession, the
// active TimerHandle, and the in-memory round context; every inbound action,
// chat line, stroke, and timer expiry is an envelope on its inbox, so at most
// one transition executes at a time for the room.
type Session struct {
	roomID string
	cfg    internal.RoomConfig
	deps   Deps

	state  *internal.GameSession
	ledger *ScoreLedger
	timer  *TimerHandle
	round  roundContext

	inbox  chan envelope
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

// roundContext is transient, round-scoped bookkeeping. It is never persisted;
// the durable GameSession carries only what survives a process restart.
type roundContext struct {
	order        []string
	rotation     int
	phaseMax     int
	autoSelected bool
	strokes      []internal.StrokeBatch
}

// NewSession spawns the actor for a room. A previously persisted session may be
// passed to resume it; otherwise a fresh WAITING session is created.
func NewSession(parent context.Context, roomID string, cfg internal.RoomConfig, existing *internal.GameSession, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)
	if deps.Bank == nil {
		deps.Bank = words.Builtin()
	}
	if deps.Timings == (Timings{}) {
		deps.Timings = DefaultTimings()
	}
	s := &Session{
		roomID: roomID,
		cfg:    cfg,
		deps:   deps,
		inbox:  make(chan envelope, 64),
		ctx:    ctx,
		cancel: cancel,
		log:    deps.Log.With().Str("component", "session").Str("room", roomID).Logger(),
	}
	if existing != nil {
		s.rehydrate(existing)
	} else {
		s.state = &internal.GameSession{
			RoomID:       roomID,
			CurrentPhase: internal.PhaseWaiting,
			TotalRounds:  cfg.TotalRounds,
			Scores:       map[string]int{},
		}
	}
	go s.loop()
	return s
}

func (s *Session) rehydrate(doc *internal.GameSession) {
	s.state = doc
	ids := make([]string, 0, len(doc.Scores))
	for id := range doc.Scores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	s.ledger = NewScoreLedger(ids)
	for _, id := range ids {
		s.ledger.Credit(id, doc.Scores[id])
	}
	s.round.order = ids
	s.round.rotation = slices.Index(ids, doc.CurrentDrawerID)
	s.round.phaseMax = s.cfg.RoundTimeSeconds

	// A timed phase resumes with whatever time the document preserved.
	switch doc.CurrentPhase {
	case internal.PhaseStarting, internal.PhaseWordSelection,
		internal.PhaseDrawing, internal.PhaseGuessing, internal.PhaseRoundEnd:
		rem := time.Duration(doc.TimeRemaining) * time.Second
		if rem < time.Second {
			rem = time.Second
		}
		s.armTimer(rem)
	}
	s.log.Info().Str("phase", string(doc.CurrentPhase)).Msg("resumed persisted session")
}

// Close tears the actor down. The active timer is cancelled on the way out.
func (s *Session) Close() { s.cancel() }

// Do delivers an action to the actor and waits for its verdict.
func (s *Session) Do(ctx context.Context, act Action) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- envelope{action: act, reply: reply}:
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the full session view for one player; the secret word and
// options are included only when the viewer is the drawer.
func (s *Session) Snapshot(ctx context.Context, viewerID string) (internal.SessionSnapshot, error) {
	snap := make(chan internal.SessionSnapshot, 1)
	select {
	case s.inbox <- envelope{snap: snap, viewerID: viewerID}:
	case <-s.ctx.Done():
		return internal.SessionSnapshot{}, ErrSessionClosed
	case <-ctx.Done():
		return internal.SessionSnapshot{}, ctx.Err()
	}
	select {
	case v := <-snap:
		return v, nil
	case <-s.ctx.Done():
		return internal.SessionSnapshot{}, ErrSessionClosed
	case <-ctx.Done():
		return internal.SessionSnapshot{}, ctx.Err()
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			if s.timer != nil {
				s.timer.Cancel()
			}
			return
		case env := <-s.inbox:
			s.handle(env)
		}
	}
}

func (s *Session) handle(env envelope) {
	defer func() {
		if r := recover(); r != nil {
			s.fatal(fmt.Sprintf("%v", r))
			if env.reply != nil {
				env.reply <- ErrSessionFailed
			}
		}
	}()

	if env.snap != nil {
		env.snap <- s.snapshot(env.viewerID)
		return
	}

	var err error
	if env.timer != nil {
		// Expiry of a timer that is no longer current is stale; drop it.
		if env.timer == s.timer {
			err = s.onTimeout()
		}
	} else {
		err = s.apply(env.action)
	}
	if env.reply != nil {
		env.reply <- err
	}
}

// apply validates an action against the current phase and runs its transition.
func (s *Session) apply(act Action) error {
	phase := s.state.CurrentPhase
	switch act.Type {
	case EventStart:
		if phase != internal.PhaseWaiting {
			return ErrInvalidPhase
		}
		return s.startGame()
	case EventSelectWord:
		if phase != internal.PhaseWordSelection {
			return ErrInvalidPhase
		}
		return s.selectWord(act.ActorID, act.Word, false)
	case EventSubmitDrawing:
		if phase != internal.PhaseDrawing {
			return ErrInvalidPhase
		}
		return s.submitDrawing(act.ActorID, act.Drawing)
	case EventSubmitGuess:
		if phase != internal.PhaseGuessing {
			return ErrInvalidPhase
		}
		return s.submitGuess(act.ActorID, act.Guess)
	case EventNextRound:
		if phase != internal.PhaseRoundEnd {
			return ErrInvalidPhase
		}
		return s.nextRound()
	case EventEndGame:
		if phase != internal.PhaseRoundEnd {
			return ErrInvalidPhase
		}
		return s.endGame()
	case EventReset:
		if phase != internal.PhaseGameEnd && phase != internal.PhaseError {
			return ErrInvalidPhase
		}
		return s.reset()
	case EventPause:
		if phase != internal.PhaseDrawing && phase != internal.PhaseGuessing {
			return ErrInvalidPhase
		}
		return s.pause()
	case EventResume:
		if phase != internal.PhasePaused {
			return ErrInvalidPhase
		}
		return s.resume()
	case EventTimerElapsed:
		return s.onTimeout()
	case EventChat:
		return s.chat(act.ActorID, act.Username, act.Text)
	case EventStroke:
		return s.stroke(act.ActorID, act.Stroke)
	case EventPlayerEvicted:
		return s.playerEvicted(act.ActorID)
	default:
		return ErrUnsupportedEvent
	}
}

// onTimeout is the phase-specific reaction to the current timer elapsing, also
// invoked synthetically (correct guess, forced skip).
func (s *Session) onTimeout() error {
	switch s.state.CurrentPhase {
	case internal.PhaseStarting:
		return s.enterWordSelection()
	case internal.PhaseWordSelection:
		word := internal.FallbackWord
		if len(s.state.WordOptions) > 0 {
			word = s.state.WordOptions[rand.Intn(len(s.state.WordOptions))]
		}
		return s.selectWord(s.state.CurrentDrawerID, word, true)
	case internal.PhaseDrawing:
		s.state.Drawings = append(s.state.Drawings, internal.DrawingRecord{
			PlayerID:    s.state.CurrentDrawerID,
			Word:        s.state.CurrentWord,
			Round:       s.state.CurrentRound,
			Placeholder: true,
			SubmittedAt: time.Now().UTC(),
		})
		s.deps.Broadcast.ToRoom(s.roomID, internal.EvtDrawingSubmitted, internal.DrawingSubmittedData{
			RoomID:      s.roomID,
			PlayerID:    s.state.CurrentDrawerID,
			Round:       s.state.CurrentRound,
			Placeholder: true,
		})
		return s.enterGuessing()
	case internal.PhaseGuessing:
		return s.enterRoundEnd()
	case internal.PhaseRoundEnd:
		return s.nextRound()
	default:
		// Stale or meaningless timeout for this phase.
		return nil
	}
}

func (s *Session) startGame() error {
	ready := s.deps.Roster.ReadyPlayers(s.roomID)
	if len(ready) < internal.MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	slices.Sort(ready)

	s.ledger = NewScoreLedger(ready)
	s.round = roundContext{order: ready, rotation: -1, phaseMax: s.cfg.RoundTimeSeconds}

	now := time.Now().UTC()
	s.state.CurrentPhase = internal.PhaseStarting
	s.state.CurrentRound = 1
	s.state.TotalRounds = s.cfg.TotalRounds
	s.state.Scores = s.ledger.Snapshot()
	s.state.Drawings = nil
	s.state.Guesses = nil
	s.state.StartedAt = now
	s.state.EndedAt = time.Time{}
	s.state.Error = nil

	s.armTimer(s.deps.Timings.StartingCountdown)
	s.log.Info().Int("players", len(ready)).Msg("game starting")
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) enterWordSelection() error {
	drawer := s.rotateDrawer()
	s.state.CurrentPhase = internal.PhaseWordSelection
	s.state.CurrentDrawerID = drawer
	s.state.CurrentWord = ""
	s.state.WordOptions = s.wordOptions()
	s.round.autoSelected = false
	s.round.strokes = nil

	s.armTimer(s.deps.Timings.WordSelection)
	s.deps.Broadcast.ToPlayer(drawer, internal.EvtWordOptions, internal.WordOptionsData{
		RoomID:    s.roomID,
		Options:   s.state.WordOptions,
		TimeLimit: int(s.deps.Timings.WordSelection.Seconds()),
	})
	s.broadcastState()
	s.save()
	return nil
}

// rotateDrawer advances round-robin over the start-of-game order, skipping
// players no longer in the room.
func (s *Session) rotateDrawer() string {
	if len(s.round.order) == 0 {
		return s.state.CurrentDrawerID
	}
	active := make(map[string]bool)
	for _, m := range s.deps.Roster.ActivePlayers(s.roomID) {
		active[m.PlayerID] = true
	}
	for i := 0; i < len(s.round.order); i++ {
		s.round.rotation = (s.round.rotation + 1) % len(s.round.order)
		candidate := s.round.order[s.round.rotation]
		if len(active) == 0 || active[candidate] {
			return candidate
		}
	}
	return s.round.order[s.round.rotation]
}

// wordOptions asks the word supply for candidates; a failing or short answer
// falls back to the embedded bank. Players never see the difference.
func (s *Session) wordOptions() []string {
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()
	opts, err := s.deps.Words.RandomWords(ctx, internal.WordOptionCount, s.cfg.Difficulty, s.cfg.Categories)
	if err != nil || len(opts) < internal.WordOptionCount {
		if err != nil {
			s.log.Warn().Err(err).Msg("word supply failed, using embedded bank")
		}
		opts = s.deps.Bank.Pick(internal.WordOptionCount, s.cfg.Difficulty, s.cfg.Categories)
	}
	return opts
}

func (s *Session) selectWord(actorID, word string, auto bool) error {
	if !auto {
		if actorID != s.state.CurrentDrawerID {
			return ErrNotDrawer
		}
		if !slices.Contains(s.state.WordOptions, word) {
			return ErrWordNotOffered
		}
	}
	s.state.CurrentWord = word
	s.state.WordOptions = nil
	s.state.CurrentPhase = internal.PhaseDrawing
	s.round.autoSelected = auto
	s.round.phaseMax = s.cfg.RoundTimeSeconds
	s.round.strokes = nil

	s.armTimer(time.Duration(s.cfg.RoundTimeSeconds) * time.Second)
	s.deps.Broadcast.ToPlayer(s.state.CurrentDrawerID, internal.EvtWordAssigned, internal.WordAssignedData{
		RoomID:       s.roomID,
		Word:         word,
		AutoSelected: auto,
		TimeLimit:    s.cfg.RoundTimeSeconds,
	})
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) submitDrawing(actorID string, payload json.RawMessage) error {
	if actorID != s.state.CurrentDrawerID {
		return ErrNotDrawer
	}
	s.state.Drawings = append(s.state.Drawings, internal.DrawingRecord{
		PlayerID:    actorID,
		Payload:     payload,
		Word:        s.state.CurrentWord,
		Round:       s.state.CurrentRound,
		SubmittedAt: time.Now().UTC(),
	})
	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtDrawingSubmitted, internal.DrawingSubmittedData{
		RoomID:   s.roomID,
		PlayerID: actorID,
		Payload:  payload,
		Round:    s.state.CurrentRound,
	})
	return s.enterGuessing()
}

func (s *Session) enterGuessing() error {
	s.state.CurrentPhase = internal.PhaseGuessing
	s.round.phaseMax = s.cfg.RoundTimeSeconds
	s.armTimer(time.Duration(s.cfg.RoundTimeSeconds) * time.Second)
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) submitGuess(actorID, guess string) error {
	if actorID == s.state.CurrentDrawerID {
		return ErrDrawerCannotGuess
	}
	if s.state.CurrentWord == "" {
		return ErrInvalidPhase
	}

	now := time.Now().UTC()
	if !MatchGuess(guess, s.state.CurrentWord) {
		s.state.Guesses = append(s.state.Guesses, internal.GuessRecord{
			PlayerID:  actorID,
			Guess:     guess,
			Round:     s.state.CurrentRound,
			GuessedAt: now,
		})
		s.deps.Broadcast.ToPlayer(actorID, internal.EvtGuessResult, internal.GuessResultData{
			RoomID:   s.roomID,
			PlayerID: actorID,
			Guess:    guess,
			Round:    s.state.CurrentRound,
		})
		s.save()
		return nil
	}

	remaining := s.timer.RemainingSeconds()
	points := GuessScore(remaining, s.round.phaseMax)
	s.ledger.Credit(actorID, points)
	s.ledger.Credit(s.state.CurrentDrawerID, internal.DrawerGuessBonus)
	s.state.Scores = s.ledger.Snapshot()
	s.state.Guesses = append(s.state.Guesses, internal.GuessRecord{
		PlayerID:  actorID,
		Guess:     guess,
		Correct:   true,
		Score:     points,
		Round:     s.state.CurrentRound,
		GuessedAt: now,
	})

	s.log.Info().Str("player", actorID).Int("points", points).Msg("correct guess")
	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtScoreUpdated, internal.ScoreUpdatedData{
		RoomID:      s.roomID,
		Scores:      s.state.Scores,
		ScorerID:    actorID,
		Points:      points,
		DrawerID:    s.state.CurrentDrawerID,
		DrawerBonus: internal.DrawerGuessBonus,
	})

	// First correct guess ends the phase immediately: force the timeout path
	// inside this same dispatch so a racing second guess can only land in
	// ROUND_END and be rejected.
	return s.onTimeout()
}

func (s *Session) enterRoundEnd() error {
	s.cancelTimer()
	s.state.CurrentPhase = internal.PhaseRoundEnd
	s.armTimer(s.deps.Timings.RoundEnd)
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) nextRound() error {
	s.state.CurrentRound++
	if s.state.CurrentRound > s.state.TotalRounds {
		return s.endGame()
	}
	s.state.CurrentWord = ""
	s.state.WordOptions = nil
	s.state.CurrentDrawerID = ""
	s.round.strokes = nil
	return s.enterWordSelection()
}

func (s *Session) endGame() error {
	s.cancelTimer()
	if s.state.CurrentRound > s.state.TotalRounds {
		s.state.CurrentRound = s.state.TotalRounds
	}
	s.state.CurrentPhase = internal.PhaseGameEnd
	s.state.EndedAt = time.Now().UTC()
	if s.ledger != nil {
		s.state.Scores = s.ledger.Snapshot()
	}

	ranking := []internal.RankedPlayer{}
	if s.ledger != nil {
		ranking = s.ledger.Ranking()
	}
	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtGameEnded, internal.GameEndedData{
		RoomID:       s.roomID,
		Ranking:      ranking,
		RoundsPlayed: s.state.TotalRounds,
	})
	s.broadcastState()
	s.save()
	s.commitStats(ranking)
	s.log.Info().Int("players", len(ranking)).Msg("game ended")
	return nil
}

// commitStats is fire-and-forget: outcomes are handed to the stats sink on a
// background goroutine and failures only logged.
func (s *Session) commitStats(ranking []internal.RankedPlayer) {
	if s.deps.Stats == nil {
		return
	}
	rounds := s.state.TotalRounds
	roomID := s.roomID
	sink := s.deps.Stats
	log := s.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, r := range ranking {
			outcome := internal.PlayerOutcome{
				RoomID: roomID,
				Score:  r.Score,
				Rank:   r.Rank,
				Won:    r.Rank == 1,
				Rounds: rounds,
			}
			if err := sink.CommitPostGameStats(ctx, r.PlayerID, outcome); err != nil {
				log.Warn().Err(err).Str("player", r.PlayerID).Msg("post-game stats commit failed")
			}
		}
	}()
}

func (s *Session) reset() error {
	s.cancelTimer()
	s.state = &internal.GameSession{
		RoomID:       s.roomID,
		CurrentPhase: internal.PhaseWaiting,
		TotalRounds:  s.cfg.TotalRounds,
		Scores:       map[string]int{},
	}
	s.ledger = nil
	s.round = roundContext{}
	s.deps.Roster.ResetReady(s.roomID)
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) pause() error {
	s.state.PreviousPhase = s.state.CurrentPhase
	s.state.CurrentPhase = internal.PhasePaused
	if s.timer != nil {
		s.timer.Pause()
		s.state.TimeRemaining = s.timer.RemainingSeconds()
	}
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) resume() error {
	s.state.CurrentPhase = s.state.PreviousPhase
	s.state.PreviousPhase = ""
	if s.timer != nil {
		s.timer.Resume()
	}
	s.broadcastState()
	s.save()
	return nil
}

func (s *Session) chat(actorID, username, text string) error {
	phase := s.state.CurrentPhase
	live := phase == internal.PhaseDrawing || phase == internal.PhaseGuessing
	if live && actorID == s.state.CurrentDrawerID {
		return ErrDrawerMuted
	}

	// A chat line that hits the secret word is never relayed.
	if live && actorID != s.state.CurrentDrawerID && MatchGuess(text, s.state.CurrentWord) {
		if phase == internal.PhaseGuessing {
			return s.submitGuess(actorID, text)
		}
		s.deps.Broadcast.ToPlayer(actorID, internal.EvtNotification, internal.NotificationData{
			Message: "hold that thought, guessing has not started yet",
			Code:    "GUESS_TOO_EARLY",
		})
		return nil
	}

	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtChatMessage, internal.ChatMessageData{
		RoomID:   s.roomID,
		PlayerID: actorID,
		Username: username,
		Text:     text,
		SentAt:   time.Now().UTC(),
	})
	return nil
}

func (s *Session) stroke(actorID string, batch *internal.StrokeBatch) error {
	if s.state.CurrentPhase != internal.PhaseDrawing {
		return ErrInvalidPhase
	}
	if actorID != s.state.CurrentDrawerID {
		return ErrNotDrawer
	}
	if batch == nil || !batch.ClampToCanvas() {
		return nil
	}
	if batch.Type == internal.StrokeClear {
		s.round.strokes = nil
	} else {
		s.round.strokes = append(s.round.strokes, *batch)
	}
	s.deps.Broadcast.ToRoomExcept(s.roomID, actorID, internal.EvtStroke, batch)
	return nil
}

// playerEvicted reacts to the registry removing a player after the grace
// window. Losing the drawer mid-round ends the round; everyone else's eviction
// only matters to the roster.
func (s *Session) playerEvicted(playerID string) error {
	if playerID != s.state.CurrentDrawerID {
		return nil
	}
	switch s.state.CurrentPhase {
	case internal.PhaseWordSelection, internal.PhaseDrawing, internal.PhaseGuessing:
		s.log.Info().Str("player", playerID).Msg("drawer evicted, ending round")
		return s.enterRoundEnd()
	}
	return nil
}

func (s *Session) fatal(msg string) {
	s.cancelTimer()
	s.state.Error = &internal.SessionError{Message: msg, Code: "FATAL"}
	s.state.CurrentPhase = internal.PhaseError
	s.log.Error().Str("reason", msg).Msg("session entered error state")
	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtError, internal.ErrorData{
		RoomID:  s.roomID,
		Message: "the game hit an internal error and was stopped",
		Code:    "FATAL",
	})
	s.save()
}

// armTimer replaces the room's timer. The previous timer is always cancelled
// first so a stale expiry cannot fire into the new phase.
func (s *Session) armTimer(d time.Duration) {
	s.cancelTimer()
	phase := s.state.CurrentPhase
	var th *TimerHandle
	th = StartTimer(d,
		func(remaining int) {
			s.deps.Broadcast.ToRoom(s.roomID, internal.EvtTimerUpdate, internal.TimerUpdateData{
				RoomID:        s.roomID,
				Phase:         phase,
				TimeRemaining: remaining,
			})
		},
		func() {
			select {
			case s.inbox <- envelope{timer: th}:
			case <-s.ctx.Done():
			}
		})
	s.timer = th
	s.state.TimeRemaining = int((d + time.Second/2) / time.Second)
}

func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Cancel()
	}
}

func (s *Session) remainingSeconds() int {
	if s.timer != nil && s.timer.Active() {
		return s.timer.RemainingSeconds()
	}
	return s.state.TimeRemaining
}

func (s *Session) stateData() internal.GameStateData {
	data := internal.GameStateData{
		RoomID:        s.roomID,
		Phase:         s.state.CurrentPhase,
		Round:         s.state.CurrentRound,
		TotalRounds:   s.state.TotalRounds,
		TimeRemaining: s.remainingSeconds(),
		DrawerID:      s.state.CurrentDrawerID,
		Scores:        s.state.Scores,
	}
	switch s.state.CurrentPhase {
	case internal.PhaseDrawing, internal.PhaseGuessing:
		data.MaskedWord = utils.MaskWord(s.state.CurrentWord)
		data.WordLength = utils.WordLength(s.state.CurrentWord)
	case internal.PhasePaused:
		if s.state.PreviousPhase == internal.PhaseDrawing || s.state.PreviousPhase == internal.PhaseGuessing {
			data.MaskedWord = utils.MaskWord(s.state.CurrentWord)
			data.WordLength = utils.WordLength(s.state.CurrentWord)
		}
	case internal.PhaseRoundEnd, internal.PhaseGameEnd:
		data.RevealedWord = s.state.CurrentWord
	}
	return data
}

func (s *Session) snapshot(viewerID string) internal.SessionSnapshot {
	snap := internal.SessionSnapshot{
		State:   s.stateData(),
		Strokes: slices.Clone(s.round.strokes),
	}
	if viewerID != "" && viewerID == s.state.CurrentDrawerID {
		snap.Word = s.state.CurrentWord
		snap.WordOptions = slices.Clone(s.state.WordOptions)
	}
	return snap
}

func (s *Session) broadcastState() {
	s.deps.Broadcast.ToRoom(s.roomID, internal.EvtStateChanged, s.stateData())
}

func (s *Session) save() {
	if s.deps.Store == nil {
		return
	}
	if s.ledger != nil {
		s.state.Scores = s.ledger.Snapshot()
	}
	s.state.TimeRemaining = s.remainingSeconds()
	s.state.LastUpdated = time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.deps.Store.SaveSession(ctx, s.state); err != nil {
		s.log.Warn().Err(err).Msg("session save failed")
	}
}
