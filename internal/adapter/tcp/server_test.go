package tcp

import (
	"bufio"
	"net"
	"testing"

	"bank-ledger/internal/core/ports/mocks"
	"bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startTestServer(t *testing.T, ledger *mocks.MockLedger) *Server {
	t.Helper()
	srv := NewServer(ledger, zerolog.Nop())
	require.NoError(t, srv.Listen("127.0.0.1:0"))
	go srv.Serve() //nolint:errcheck
	t.Cleanup(func() { srv.Close() })
	return srv
}

func dial(t *testing.T, srv *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func request(t *testing.T, conn net.Conn, r *bufio.Reader, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line))
	require.NoError(t, err)
	resp, err := r.ReadString('\n')
	require.NoError(t, err)
	return resp
}

func TestServer_Deposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Deposit(gomock.Any(), "alice", int64(100)).Return(int64(100), nil)

	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	resp := request(t, conn, r, "DEPOSIT alice 100\n")
	assert.Equal(t, "Deposit successful. New balance: 100\n", resp)
}

func TestServer_Withdraw(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Withdraw(gomock.Any(), "alice", int64(30)).Return(int64(70), nil)

	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	resp := request(t, conn, r, "WITHDRAW alice 30\n")
	assert.Equal(t, "Withdrawal successful. Remaining balance: 70\n", resp)
}

func TestServer_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Withdraw(gomock.Any(), "bob", int64(10)).
		Return(int64(0), apperror.ErrAccountNotFound())

	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	resp := request(t, conn, r, "WITHDRAW bob 10\n")
	assert.Equal(t, "Account not found.\n", resp)
}

func TestServer_BadRequestKeepsConnectionOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Deposit(gomock.Any(), "alice", int64(10)).Return(int64(10), nil)

	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	// Unknown command answers with an error line...
	resp := request(t, conn, r, "FROBNICATE alice 10\n")
	assert.Equal(t, "Unknown command.\n", resp)

	// ...and the same connection still accepts a valid request.
	resp = request(t, conn, r, "DEPOSIT alice 10\n")
	assert.Equal(t, "Deposit successful. New balance: 10\n", resp)
}

func TestServer_MalformedAndUsageLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	resp := request(t, conn, r, "\n")
	assert.Equal(t, "Invalid request format.\n", resp)

	resp = request(t, conn, r, "DEPOSIT alice\n")
	assert.Equal(t, "Usage: DEPOSIT <account_name> <amount>\n", resp)

	resp = request(t, conn, r, "DEPOSIT alice ten\n")
	assert.Equal(t, "Invalid amount format.\n", resp)
}

func TestServer_StorageFailureHidesCause(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Deposit(gomock.Any(), "alice", int64(5)).
		Return(int64(0), apperror.ErrStorage(assert.AnError))

	srv := startTestServer(t, ledger)
	conn, r := dial(t, srv)

	resp := request(t, conn, r, "DEPOSIT alice 5\n")
	assert.Equal(t, "Internal error. Please try again.\n", resp)
	assert.NotContains(t, resp, assert.AnError.Error())
}

func TestServer_ConcurrentConnections(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().Deposit(gomock.Any(), "alice", int64(1)).Return(int64(1), nil).Times(2)

	srv := startTestServer(t, ledger)

	conn1, r1 := dial(t, srv)
	conn2, r2 := dial(t, srv)

	resp1 := request(t, conn1, r1, "DEPOSIT alice 1\n")
	resp2 := request(t, conn2, r2, "DEPOSIT alice 1\n")
	assert.Equal(t, resp1, resp2)
}
