package web

import (
	"astroduel/internal/back"
	"astroduel/internal/util"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
)

const maxRequestBodySize = 1 << 16

type playerResponse struct {
	Name      string               `json:"name"`
	CreatedAt util.TimeAsTimestamp `json:"createdAt"`
	Rating    float64              `json:"rating"`
	Deviation float64              `json:"deviation"`
	Exposure  float64              `json:"exposure"`
}

func newPlayerResponse(p back.Player) playerResponse {
	return playerResponse{
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		Rating:    p.Rating,
		Deviation: p.Deviation,
		Exposure:  p.TrueSkill().Exposure(),
	}
}

type matchSlotResponse struct {
	Player string `json:"player"`
	Rank   int    `json:"rank"`
}

type matchResponse struct {
	ID        int64                `json:"id"`
	Map       string               `json:"map"`
	CreatedAt util.TimeAsTimestamp `json:"createdAt"`
	Teams     bool                 `json:"teams"`
	Slots     []*matchSlotResponse `json:"slots"`
}

func newMatchResponse(m back.Match) matchResponse {
	ret := matchResponse{
		ID:        m.ID,
		Map:       m.Map,
		CreatedAt: m.CreatedAt,
		Teams:     m.Teams,
		Slots:     make([]*matchSlotResponse, len(m.Slots)),
	}

	for k, v := range m.Slots {
		if v.Valid {
			ret.Slots[k] = &matchSlotResponse{Player: v.Player, Rank: v.Rank}
		}
	}

	return ret
}

type historyEntryResponse struct {
	MatchID   int64   `json:"matchID"`
	Rating    float64 `json:"rating"`
	Deviation float64 `json:"deviation"`
}

func (s *Server) getPlayers(w http.ResponseWriter, _ *http.Request) {
	names, err := s.back.ListPlayers()
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusOK, names)
}

func (s *Server) getLeaderboard(w http.ResponseWriter, _ *http.Request) {
	players, err := s.back.ListPlayersRanked()
	if err != nil {
		s.backError(w, err)
		return
	}

	ret := make([]playerResponse, 0, len(players))
	for _, v := range players {
		ret = append(ret, newPlayerResponse(v))
	}

	s.response(w, http.StatusOK, ret)
}

func (s *Server) getOnePlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.back.GetPlayer(chi.URLParam(r, "name"))
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusOK, newPlayerResponse(player))
}

func (s *Server) getPlayerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.back.GetPlayerHistory(chi.URLParam(r, "name"))
	if err != nil {
		s.backError(w, err)
		return
	}

	ret := make([]historyEntryResponse, 0, len(history))
	for _, v := range history {
		ret = append(ret, historyEntryResponse{
			MatchID:   v.MatchID,
			Rating:    v.Rating,
			Deviation: v.Deviation,
		})
	}

	s.response(w, http.StatusOK, ret)
}

func (s *Server) getMatches(w http.ResponseWriter, _ *http.Request) {
	matches, err := s.back.ListMatches()
	if err != nil {
		s.backError(w, err)
		return
	}

	ret := make([]matchResponse, 0, len(matches))
	for _, v := range matches {
		ret = append(ret, newMatchResponse(v))
	}

	s.response(w, http.StatusOK, ret)
}

func parseMatchID(r *http.Request) (int64, error) {
	str := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid match ID `%s`", back.ErrInvalidInput, str)
	}

	return id, nil
}

func (s *Server) getOneMatch(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(r)
	if err != nil {
		s.backError(w, err)
		return
	}

	match, err := s.back.GetMatch(id)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusOK, newMatchResponse(match))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %s", back.ErrInvalidInput, err)
	}

	return nil
}

type postPlayerRequest struct {
	Name string `json:"name"`
}

func (s *Server) postPlayer(w http.ResponseWriter, r *http.Request) {
	var req postPlayerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.backError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if err := s.back.AddPlayer(name); err != nil {
		s.backError(w, err)
		return
	}

	player, err := s.back.GetPlayer(name)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusCreated, newPlayerResponse(player))
}

func (s *Server) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.back.RemovePlayer(chi.URLParam(r, "name")); err != nil {
		s.backError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type postMatchRequest struct {
	Map     string   `json:"map"`
	Teams   bool     `json:"teams"`
	Players []string `json:"players"`
	Ranks   []int    `json:"ranks"`
}

func (s *Server) postMatch(w http.ResponseWriter, r *http.Request) {
	var req postMatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.backError(w, err)
		return
	}

	match, err := s.back.AddMatch(req.Map, req.Teams, req.Players, req.Ranks)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusCreated, newMatchResponse(match))
}

func (s *Server) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(r)
	if err != nil {
		s.backError(w, err)
		return
	}

	if err := s.back.RemoveMatch(id); err != nil {
		s.backError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postRecalculate(w http.ResponseWriter, _ *http.Request) {
	if err := s.back.RecalculateAllRatings(); err != nil {
		s.backError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
