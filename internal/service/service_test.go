package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

type clients struct {
	auth        apiconnect.AuthServiceClient
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
}

// setupTestServer serves every service over httptest. When requireAuth is
// set, everything except register and login needs a bearer token.
func setupTestServer(t *testing.T, requireAuth bool) clients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := ledger.New(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authInterceptor := middleware.OptionalAuth(jwtManager)
	if requireAuth {
		authInterceptor = middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		)
	}
	opts := connect.WithInterceptors(authInterceptor, middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(auth.NewPasswordAuthenticator(l), jwtManager, logger), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), opts))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l), opts))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(l), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return clients{
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

func register(t *testing.T, c clients, name string) *api.RegisterResponse {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password-" + name,
	}))
	require.NoError(t, err)
	return resp.Msg
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAuthService(t *testing.T) {
	c := setupTestServer(t, false)
	ctx := context.Background()

	reg := register(t, c, "alice")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	t.Run("login", func(t *testing.T) {
		resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ALICE@example.com", Password: "password-alice"}))
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, resp.Msg.User.ID)
		assert.NotEmpty(t, resp.Msg.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "nope-nope"}))
		assertCode(t, connect.CodeUnauthenticated, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "alice@example.com", DisplayName: "A", Password: "long enough"}))
		assertCode(t, connect.CodeAlreadyExists, err)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob", Password: "short"}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Password: "long enough"}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})
}

func TestGroupService(t *testing.T) {
	c := setupTestServer(t, false)
	ctx := context.Background()
	alice, bob, carol := register(t, c, "alice").User, register(t, c, "bob").User, register(t, c, "carol").User

	created, err := c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Roommates",
		Members: []string{alice.ID, bob.ID},
	}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID
	require.NotEmpty(t, groupID)

	got, err := c.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	require.NoError(t, err)
	assert.Equal(t, "Roommates", got.Msg.Group.Name)
	assert.Equal(t, []string{alice.ID, bob.ID}, got.Msg.Group.Members)

	added, err := c.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: groupID, UserID: carol.ID}))
	require.NoError(t, err)
	assert.Len(t, added.Msg.Group.Members, 3)

	_, err = c.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: groupID, UserID: carol.ID}))
	assertCode(t, connect.CodeAlreadyExists, err)

	removed, err := c.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: groupID, UserID: carol.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID, bob.ID}, removed.Msg.Group.Members)

	list, err := c.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Groups, 1)

	_, err = c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: ""}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = c.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: groupID}))
	require.NoError(t, err)

	_, err = c.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestSettlementFlow(t *testing.T) {
	c := setupTestServer(t, false)
	ctx := context.Background()
	aliceReg := register(t, c, "alice")
	alice, bob, carol := aliceReg.User, register(t, c, "bob").User, register(t, c, "carol").User

	created, err := c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Trip",
		Members: []string{alice.ID, bob.ID, carol.ID},
	}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID

	expense, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		GroupID:     groupID,
		PayerID:     alice.ID,
		Amount:      d("90"),
		SplitMethod: "equal",
		Description: "Dinner",
	}))
	require.NoError(t, err)
	assert.Len(t, expense.Msg.Expense.Shares, 3)

	balances, err := c.settlements.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, balances.Msg.Balances, 3)
	assert.False(t, balances.Msg.Settled)
	assert.Equal(t, "alice", balances.Msg.Balances[0].DisplayName)
	assert.True(t, balances.Msg.Balances[0].Amount.Equal(d("60")))
	assert.True(t, balances.Msg.Balances[1].Amount.Equal(d("-30")))

	suggest, err := c.settlements.SuggestSettlements(ctx, connect.NewRequest(&api.SuggestSettlementsRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, suggest.Msg.Suggestions, 2)
	for _, s := range suggest.Msg.Suggestions {
		assert.Equal(t, alice.ID, s.ToUserID)
		assert.Equal(t, "alice", s.ToName)
		assert.True(t, s.Amount.Equal(d("30")))
	}
	for _, b := range suggest.Msg.BalancesAfter {
		assert.True(t, b.Amount.IsZero())
	}

	recorded, err := c.settlements.RecordSettlement(ctx, withToken(&api.RecordSettlementRequest{
		GroupID:    groupID,
		FromUserID: bob.ID,
		ToUserID:   alice.ID,
		Amount:     d("30"),
		Note:       "bank transfer",
	}, aliceReg.Token))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, recorded.Msg.Settlement.CreatedBy)

	accepted, err := c.settlements.AcceptSuggestions(ctx, connect.NewRequest(&api.AcceptSuggestionsRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, accepted.Msg.Settlements, 1)
	assert.Equal(t, carol.ID, accepted.Msg.Settlements[0].FromUserID)
	assert.Empty(t, accepted.Msg.Settlements[0].CreatedBy)

	balances, err = c.settlements.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)
	assert.True(t, balances.Msg.Settled)

	history, err := c.settlements.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupID: groupID}))
	require.NoError(t, err)
	assert.Len(t, history.Msg.Settlements, 2)

	expenses, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, expenses.Msg.Expenses, 1)
	assert.Equal(t, "Dinner", expenses.Msg.Expenses[0].Description)

	t.Run("member with history cannot leave", func(t *testing.T) {
		_, err := c.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: groupID, UserID: bob.ID}))
		assertCode(t, connect.CodeFailedPrecondition, err)
	})
}

func TestErrorCodes(t *testing.T) {
	c := setupTestServer(t, false)
	ctx := context.Background()
	alice, bob := register(t, c, "alice").User, register(t, c, "bob").User
	created, err := c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Pair", Members: []string{alice.ID, bob.ID}}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "unknown split method",
			call: func() error {
				_, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{GroupID: groupID, PayerID: alice.ID, Amount: d("10"), SplitMethod: "shares"}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "custom split not summing to amount",
			call: func() error {
				_, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
					GroupID: groupID, PayerID: alice.ID, Amount: d("10"), SplitMethod: "custom",
					Weights: map[string]decimal.Decimal{alice.ID: d("3"), bob.ID: d("3")},
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "balances of unknown group",
			call: func() error {
				_, err := c.settlements.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: "nope"}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "settlement with outsider",
			call: func() error {
				_, err := c.settlements.RecordSettlement(ctx, connect.NewRequest(&api.RecordSettlementRequest{GroupID: groupID, FromUserID: "ghost", ToUserID: alice.ID, Amount: d("1")}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.want, tt.call())
		})
	}
}

func TestRequireAuth(t *testing.T) {
	c := setupTestServer(t, true)
	ctx := context.Background()

	reg := register(t, c, "alice")

	_, err := c.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = c.groups.ListGroups(ctx, withToken(&api.ListGroupsRequest{}, "garbage"))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = c.groups.ListGroups(ctx, withToken(&api.ListGroupsRequest{}, reg.Token))
	require.NoError(t, err)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{&calculator.DataIntegrityError{Source: "expense payer", Member: "x"}, connect.CodeDataLoss},
		{&calculator.ImbalanceError{Sum: d("0.02")}, connect.CodeFailedPrecondition},
		{ledger.ErrMemberHasHistory, connect.CodeFailedPrecondition},
		{storage.ErrNotFound, connect.CodeNotFound},
		{auth.ErrInvalidToken, connect.CodeUnauthenticated},
		{context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, codeOf(tt.err), "%v", tt.err)
	}

	passthrough := connect.NewError(connect.CodeUnavailable, errors.New("down"))
	assert.Same(t, passthrough, toConnectError(passthrough))
}
