package service

import (
	"context"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/session"
)

// DropdownService answers the listing requests of dropdown widgets.
type DropdownService interface {
	Value(ctx context.Context, sess *session.Session, req contract.ValueRequest) (*contract.Results, error)
	Connect(ctx context.Context, sess *session.Session, req contract.ConnectRequest) (*contract.ConnectResults, error)
	Number(ctx context.Context, sess *session.Session, req contract.NumberRequest) (*contract.Results, error)
	Users(ctx context.Context, sess *session.Session, req contract.UsersRequest) (*contract.Results, error)
	Netpoint(ctx context.Context, sess *session.Session, req contract.NetpointRequest) (*contract.Results, error)
	Name(ctx context.Context, sess *session.Session, req contract.NameRequest) (*contract.NameResult, error)
	ValueWithUnit(sess *session.Session, req contract.UnitRequest) string
	Languages(sess *session.Session, req contract.LanguagesRequest) []contract.LanguageOption
	List(ctx context.Context, sess *session.Session, req contract.ListRequest) (*contract.ListPage, error)
}

// ImportService creates dropdown rows and their translations. A nil
// session is a trusted internal caller and skips the right checks.
type ImportService interface {
	Import(ctx context.Context, sess *session.Session, req contract.ImportRequest) (int64, error)
	Translate(ctx context.Context, sess *session.Session, req contract.TranslateRequest) error
}

type SessionService interface {
	Login(ctx context.Context, req contract.LoginRequest) (*session.Session, error)
	Get(id string) (*session.Session, error)
	Logout(id string)
}
