package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/gorilla/mux"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req contract.LoginRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.str("login", &req.Login)
		f.str("language", &req.Language)
		f.optBool("show_ids", &req.ShowIDs)
		f.optBool("flat_tree", &req.FlatTree)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.sessions.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, contract.SessionInfo{
		ID:             sess.ID,
		Login:          sess.Login,
		Language:       sess.Language,
		ActiveEntities: sess.ActiveEntities,
		DefaultEntity:  sess.DefaultEntity,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) newToken(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req contract.TokenRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.str("itemtype", &req.ItemType)
		f.text("entity_restrict", &req.EntityRestrict)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, contract.TokenResult{
		Token: sess.NewIDORToken(req.ItemType, req.EntityRestrict.String()),
	})
}

func (s *Server) storeCondition(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !isJSON(r) {
		respondWithError(w, http.StatusUnsupportedMediaType, "conditions are sent as JSON")
		return
	}
	var c contract.Condition
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&c); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidCondition, err))
		return
	}
	if len(c.Filters) == 0 {
		s.fail(w, r, fmt.Errorf("%w: no filters", domain.ErrInvalidCondition))
		return
	}
	key, err := sess.StoreCondition(c.Filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, contract.ConditionResult{Key: key})
}

// readPaging reads the page parameters shared by every listing.
func readPaging(f *form, page, pageLimit *int, search *string) {
	f.int("page", page)
	f.int("page_limit", pageLimit)
	f.str("searchText", search)
}

func (s *Server) value(w http.ResponseWriter, r *http.Request) {
	req := contract.NewValueRequest("")
	err := s.decode(w, r, &req, func(f *form) {
		f.str("itemtype", &req.ItemType)
		f.str("_idor_token", &req.IDORToken)
		readPaging(f, &req.Page, &req.PageLimit, &req.SearchText)
		f.int64s("used", &req.Used)
		f.text("entity_restrict", &req.EntityRestrict)
		f.condition("condition", &req.Condition)
		f.text("display_emptychoice", &req.DisplayEmptyChoice)
		f.str("emptylabel", &req.EmptyLabel)
		f.json("toadd", &req.ToAdd)
		f.text("permit_select_parent", &req.PermitSelectParent)
		f.strs("displaywith", &req.DisplayWith)
		f.optInt64("parent_id", &req.ParentID)
		f.optInt64("_one_id", &req.OneID)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Value(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	req := contract.NewConnectRequest("", "")
	err := s.decode(w, r, &req, func(f *form) {
		f.str("fromtype", &req.FromType)
		f.str("itemtype", &req.ItemType)
		f.str("_idor_token", &req.IDORToken)
		readPaging(f, &req.Page, &req.PageLimit, &req.SearchText)
		f.json("used", &req.Used)
		f.text("entity_restrict", &req.EntityRestrict)
		f.text("onlyglobal", &req.OnlyGlobal)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Connect(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) number(w http.ResponseWriter, r *http.Request) {
	req := contract.NewNumberRequest()
	err := s.decode(w, r, &req, func(f *form) {
		f.float("min", &req.Min)
		f.float("max", &req.Max)
		f.float("step", &req.Step)
		f.str("unit", &req.Unit)
		readPaging(f, &req.Page, &req.PageLimit, &req.SearchText)
		f.floats("used", &req.Used)
		f.json("toadd", &req.ToAdd)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Number(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	req := contract.NewUsersRequest()
	err := s.decode(w, r, &req, func(f *form) {
		f.str("_idor_token", &req.IDORToken)
		f.str("right", &req.Right)
		f.text("all", &req.All)
		readPaging(f, &req.Page, &req.PageLimit, &req.SearchText)
		f.int64s("used", &req.Used)
		f.text("entity_restrict", &req.EntityRestrict)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Users(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) netpoint(w http.ResponseWriter, r *http.Request) {
	req := contract.NewNetpointRequest()
	err := s.decode(w, r, &req, func(f *form) {
		readPaging(f, &req.Page, &req.PageLimit, &req.SearchText)
		f.text("entity_restrict", &req.EntityRestrict)
		f.optInt64("locations_id", &req.LocationID)
		f.str("devtype", &req.DevType)
		f.int64("devid", &req.DevID)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Netpoint(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) name(w http.ResponseWriter, r *http.Request) {
	req := contract.NewNameRequest("", 0)
	err := s.decode(w, r, &req, func(f *form) {
		f.str("table", &req.Table)
		f.int64("id", &req.ID)
		f.text("withcomment", &req.WithComment)
		f.text("translate", &req.Translate)
		f.text("tooltip", &req.Tooltip)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.Name(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) importItem(w http.ResponseWriter, r *http.Request) {
	var req contract.ImportRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.str("itemtype", &req.ItemType)
		f.str("name", &req.Name)
		f.str("completename", &req.CompleteName)
		f.int64("entities_id", &req.EntityID)
		f.int64("parent_id", &req.ParentID)
		f.str("comment", &req.Comment)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.imports.Import(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contract.ImportResult{ID: id})
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var req contract.TranslateRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.str("itemtype", &req.ItemType)
		f.int64("id", &req.ID)
		f.str("language", &req.Language)
		f.str("field", &req.Field)
		f.str("value", &req.Value)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.imports.Translate(r.Context(), sessionFrom(r.Context()), req); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) languages(w http.ResponseWriter, r *http.Request) {
	var req contract.LanguagesRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.text("display_emptychoice", &req.DisplayEmptyChoice)
		f.str("emptylabel", &req.EmptyLabel)
		f.str("value", &req.Value)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s.dropdown.Languages(sessionFrom(r.Context()), req))
}

func (s *Server) unit(w http.ResponseWriter, r *http.Request) {
	var req contract.UnitRequest
	err := s.decode(w, r, &req, func(f *form) {
		f.str("value", &req.Value)
		f.str("unit", &req.Unit)
		f.optInt("decimals", &req.Decimals)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contract.UnitResult{
		Text: s.dropdown.ValueWithUnit(sessionFrom(r.Context()), req),
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	req := contract.ListRequest{ItemType: mux.Vars(r)["itemtype"]}
	err := s.decode(w, r, &req, func(f *form) {
		f.int("start", &req.Start)
		f.int("limit", &req.Limit)
		f.str("searchText", &req.SearchText)
		f.text("entity_restrict", &req.EntityRestrict)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.dropdown.List(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
