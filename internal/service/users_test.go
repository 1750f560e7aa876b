package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersRequest(sess *session.Session, mods ...func(*contract.UsersRequest)) contract.UsersRequest {
	req := contract.NewUsersRequest()
	for _, mod := range mods {
		mod(&req)
	}
	req.IDORToken = sess.NewIDORToken(UserItemType, req.EntityRestrict.String())
	return req
}

func userOption(id int64, login string) contract.Option {
	return contract.Option{ID: id, Text: login, Title: login + " - " + login}
}

func TestUsers(t *testing.T) {
	env := setupEnv(t)
	sess := env.login(t, "_test_user")
	ctx := context.Background()
	id := func(login string) int64 { return env.fx.ID("User", login) }

	res, err := env.dropdown.Users(ctx, sess, usersRequest(sess))
	require.NoError(t, err)
	requireOptions(t, []contract.Option{
		{ID: int64(0), Text: domain.EmptyChoiceLabel},
		userOption(id("_test_user"), "_test_user"),
		userOption(id("glpi"), "glpi"),
		userOption(id("normal"), "normal"),
		userOption(id("post-only"), "post-only"),
		userOption(id("tech"), "tech"),
	}, res.Results)
	assert.Equal(t, 5, res.Count)

	res, err = env.dropdown.Users(ctx, sess, usersRequest(sess, func(r *contract.UsersRequest) {
		r.All = true
		r.Used = []int64{id("glpi"), id("normal")}
	}))
	require.NoError(t, err)
	requireOptions(t, []contract.Option{
		{ID: int64(0), Text: "All"},
		userOption(id("_test_user"), "_test_user"),
		userOption(id("post-only"), "post-only"),
		userOption(id("tech"), "tech"),
	}, res.Results)
	assert.Equal(t, 3, res.Count)

	res, err = env.dropdown.Users(ctx, sess, usersRequest(sess, func(r *contract.UsersRequest) {
		r.SearchText = "gl"
	}))
	require.NoError(t, err)
	requireOptions(t, []contract.Option{userOption(id("glpi"), "glpi")}, res.Results)
	assert.Equal(t, 1, res.Count)
}

func TestUsers_RightSelectors(t *testing.T) {
	env := setupEnv(t)
	sess := env.login(t, "_test_user")
	ctx := context.Background()

	logins := func(res *contract.Results) []string {
		var out []string
		for _, opt := range res.Results {
			if id, ok := opt.ID.(int64); ok && id > 0 {
				out = append(out, opt.Text)
			}
		}
		return out
	}

	res, err := env.dropdown.Users(ctx, sess, usersRequest(sess, func(r *contract.UsersRequest) {
		r.Right = "computer"
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_user", "glpi", "normal", "tech"}, logins(res))

	res, err = env.dropdown.Users(ctx, sess, usersRequest(sess, func(r *contract.UsersRequest) {
		r.Right = contract.RightCurrent
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_user"}, logins(res))

	shown := env.login(t, "tech", withShowIDs())
	res, err = env.dropdown.Users(ctx, shown, usersRequest(shown, func(r *contract.UsersRequest) {
		r.Right = contract.RightCurrent
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{fmt.Sprintf("tech (%d)", env.fx.ID("User", "tech"))}, logins(res))
}

func TestUsers_RequiresToken(t *testing.T) {
	env := setupEnv(t)
	sess := env.login(t, "_test_user")

	req := contract.NewUsersRequest()
	req.IDORToken = sess.NewIDORToken("Computer", "")
	_, err := env.dropdown.Users(context.Background(), sess, req)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}
