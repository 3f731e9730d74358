package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/clearbridge-dev/payments/internal/domain/errors"
	"github.com/clearbridge-dev/payments/internal/domain/model"
	"github.com/clearbridge-dev/payments/internal/domain/provider"
	"github.com/clearbridge-dev/payments/internal/domain/repository"
)

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*model.PaymentTransaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.PaymentTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListAll(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentTransaction), args.Error(1)
}

func (m *MockTransactionRepository) SetAuthorization(ctx context.Context, reference, authorizationURL, accessCode string) error {
	args := m.Called(ctx, reference, authorizationURL, accessCode)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkSuccess(ctx context.Context, reference string, fields repository.SuccessFields) (*model.PaymentTransaction, bool, error) {
	args := m.Called(ctx, reference, fields)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Bool(1), args.Error(2)
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, reference string, fields repository.FailureFields) (*model.PaymentTransaction, bool, error) {
	args := m.Called(ctx, reference, fields)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Bool(1), args.Error(2)
}

// MockGatewayConfigRepository is a mock implementation of GatewayConfigRepository
type MockGatewayConfigRepository struct {
	mock.Mock
}

func (m *MockGatewayConfigRepository) GetActive(ctx context.Context) (*model.GatewayConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatewayConfig), args.Error(1)
}

func (m *MockGatewayConfigRepository) Save(ctx context.Context, publicKey, secretKey string, active bool) (*model.GatewayConfig, error) {
	args := m.Called(ctx, publicKey, secretKey, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatewayConfig), args.Error(1)
}

// MockGateway is a mock implementation of the payment gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context, secretKey string, req *provider.InitializeRequest) (*provider.InitializeResponse, error) {
	args := m.Called(ctx, secretKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.InitializeResponse), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, secretKey string, reference string) (*provider.VerifyResponse, error) {
	args := m.Called(ctx, secretKey, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.VerifyResponse), args.Error(1)
}

func (m *MockGateway) GetProviderName() string {
	return "mock"
}

// stubGenerator returns a fixed sequence of references.
type stubGenerator struct {
	refs []string
	next int
}

func (g *stubGenerator) Generate() (string, error) {
	if g.next >= len(g.refs) {
		return "", errors.New("out of references")
	}
	ref := g.refs[g.next]
	g.next++
	return ref, nil
}

func activeConfig() *model.GatewayConfig {
	return &model.GatewayConfig{
		ID:        1,
		PublicKey: "pk_test_abc",
		SecretKey: "sk_test_secret1234",
		IsActive:  true,
	}
}

func newService(txnRepo *MockTransactionRepository, cfgRepo *MockGatewayConfigRepository, gw *MockGateway, fixed *decimal.Decimal) *PaymentService {
	return NewPaymentService(txnRepo, cfgRepo, gw, &stubGenerator{refs: []string{"PAY-TEST-0001"}}, fixed, zap.NewNop())
}

func TestInitializePayment_Success(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)
	userID := uuid.New()

	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	txnRepo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.PaymentTransaction) bool {
		return txn.Reference == "PAY-TEST-0001" &&
			txn.Status == model.TransactionStatusPending &&
			txn.Amount.Equal(decimal.NewFromInt(8550)) &&
			txn.Currency == "NGN"
	})).Return(nil)
	gw.On("Initialize", mock.Anything, "sk_test_secret1234", mock.MatchedBy(func(req *provider.InitializeRequest) bool {
		// 8550 NGN = 855000 kobo
		return req.AmountMinor == 855000 && req.Reference == "PAY-TEST-0001"
	})).Return(&provider.InitializeResponse{
		AuthorizationURL: "https://gateway.example/authorize/xyz",
		AccessCode:       "xyz",
		Reference:        "PAY-TEST-0001",
	}, nil)
	txnRepo.On("SetAuthorization", mock.Anything, "PAY-TEST-0001", "https://gateway.example/authorize/xyz", "xyz").Return(nil)

	service := newService(txnRepo, cfgRepo, gw, nil)
	result, err := service.InitializePayment(context.Background(), userID, "user@example.com", decimal.NewFromInt(8550), "NGN", "https://site.example/callback")

	require.NoError(t, err)
	assert.Equal(t, "PAY-TEST-0001", result.Reference)
	assert.Equal(t, "https://gateway.example/authorize/xyz", result.AuthorizationURL)
	txnRepo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestInitializePayment_RejectsNonPositiveAmount(t *testing.T) {
	service := newService(new(MockTransactionRepository), new(MockGatewayConfigRepository), new(MockGateway), nil)

	_, err := service.InitializePayment(context.Background(), uuid.New(), "user@example.com", decimal.Zero, "NGN", "")

	var validationErr *domainErrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestInitializePayment_FixedFeeMismatch(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	fixed := decimal.NewFromInt(8550)
	service := newService(txnRepo, new(MockGatewayConfigRepository), new(MockGateway), &fixed)

	_, err := service.InitializePayment(context.Background(), uuid.New(), "user@example.com", decimal.NewFromInt(100), "NGN", "")

	var validationErr *domainErrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "8550")
	// No record may be created on validation failure
	txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitializePayment_NotConfigured(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	cfgRepo.On("GetActive", mock.Anything).Return(nil, nil)

	service := newService(txnRepo, cfgRepo, new(MockGateway), nil)
	_, err := service.InitializePayment(context.Background(), uuid.New(), "user@example.com", decimal.NewFromInt(100), "NGN", "")

	var notConfigured *domainErrors.NotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
	txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitializePayment_GatewayFailureLeavesPendingRecord(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)

	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	txnRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	gw.On("Initialize", mock.Anything, mock.Anything, mock.Anything).Return(nil, &provider.ProviderError{
		Kind:    provider.ErrKindTimeout,
		Message: "request timed out",
	})

	service := newService(txnRepo, cfgRepo, gw, nil)
	_, err := service.InitializePayment(context.Background(), uuid.New(), "user@example.com", decimal.NewFromInt(8550), "NGN", "")

	var providerErr *provider.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.True(t, providerErr.Retryable())
	// The pending record was created before the gateway call and is not
	// rolled back or transitioned.
	txnRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
	txnRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitializePayment_AuthorizationWriteFailureDoesNotFailOperation(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)

	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	txnRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	gw.On("Initialize", mock.Anything, mock.Anything, mock.Anything).Return(&provider.InitializeResponse{
		AuthorizationURL: "https://gateway.example/authorize/abc",
		AccessCode:       "abc",
	}, nil)
	txnRepo.On("SetAuthorization", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("write failed"))

	service := newService(txnRepo, cfgRepo, gw, nil)
	result, err := service.InitializePayment(context.Background(), uuid.New(), "user@example.com", decimal.NewFromInt(8550), "NGN", "")

	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/authorize/abc", result.AuthorizationURL)
}

func TestVerifyPayment_NotFound(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	txnRepo.On("GetByReference", mock.Anything, "PAY-MISSING").Return(nil, nil)

	service := newService(txnRepo, new(MockGatewayConfigRepository), new(MockGateway), nil)
	_, err := service.VerifyPayment(context.Background(), "PAY-MISSING", uuid.New(), false)

	var notFound *domainErrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestVerifyPayment_OwnershipEnforced(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	txnRepo := new(MockTransactionRepository)
	txnRepo.On("GetByReference", mock.Anything, "PAY-OWNED").Return(&model.PaymentTransaction{
		Reference: "PAY-OWNED",
		UserID:    owner,
		Status:    model.TransactionStatusPending,
	}, nil)

	service := newService(txnRepo, new(MockGatewayConfigRepository), new(MockGateway), nil)

	// Another user's verify surfaces as not-found, not forbidden, so the
	// transaction's existence is not leaked.
	_, err := service.VerifyPayment(context.Background(), "PAY-OWNED", other, false)
	var notFound *domainErrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestVerifyPayment_AdminBypassesOwnership(t *testing.T) {
	owner := uuid.New()
	admin := uuid.New()
	txnRepo := new(MockTransactionRepository)
	txnRepo.On("GetByReference", mock.Anything, "PAY-OWNED").Return(&model.PaymentTransaction{
		Reference: "PAY-OWNED",
		UserID:    owner,
		Status:    model.TransactionStatusSuccess,
	}, nil)

	service := newService(txnRepo, new(MockGatewayConfigRepository), new(MockGateway), nil)
	result, err := service.VerifyPayment(context.Background(), "PAY-OWNED", admin, true)

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSuccess, result.Status)
}

func TestVerifyPayment_PendingToSuccess(t *testing.T) {
	userID := uuid.New()
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)

	pending := &model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusPending,
	}
	paidAt := time.Now()
	final := &model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusSuccess,
		PaidAt:    &paidAt,
	}

	txnRepo.On("GetByReference", mock.Anything, "PAY-TEST-0001").Return(pending, nil)
	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	gw.On("Verify", mock.Anything, "sk_test_secret1234", "PAY-TEST-0001").Return(&provider.VerifyResponse{
		Status:      provider.StatusSuccess,
		AmountMinor: 855000,
		Currency:    "NGN",
	}, nil)
	txnRepo.On("MarkSuccess", mock.Anything, "PAY-TEST-0001", mock.Anything).Return(final, true, nil)

	service := newService(txnRepo, cfgRepo, gw, nil)
	result, err := service.VerifyPayment(context.Background(), "PAY-TEST-0001", userID, false)

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSuccess, result.Status)
	assert.NotNil(t, result.Transaction.PaidAt)
	txnRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_GatewayFailureStatusMapsToFailed(t *testing.T) {
	userID := uuid.New()
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)

	txnRepo.On("GetByReference", mock.Anything, "PAY-TEST-0001").Return(&model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusPending,
	}, nil)
	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	gw.On("Verify", mock.Anything, mock.Anything, "PAY-TEST-0001").Return(&provider.VerifyResponse{
		Status: "abandoned",
	}, nil)
	txnRepo.On("MarkFailed", mock.Anything, "PAY-TEST-0001", mock.MatchedBy(func(fields repository.FailureFields) bool {
		return fields.Code == "abandoned"
	})).Return(&model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusFailed,
	}, true, nil)

	service := newService(txnRepo, cfgRepo, gw, nil)
	result, err := service.VerifyPayment(context.Background(), "PAY-TEST-0001", userID, false)

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusFailed, result.Status)
}

func TestVerifyPayment_TerminalShortCircuitsGateway(t *testing.T) {
	userID := uuid.New()
	txnRepo := new(MockTransactionRepository)
	gw := new(MockGateway)

	paidAt := time.Now()
	txnRepo.On("GetByReference", mock.Anything, "PAY-TEST-0001").Return(&model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusSuccess,
		PaidAt:    &paidAt,
	}, nil)

	service := newService(txnRepo, new(MockGatewayConfigRepository), gw, nil)

	// Two verifies in succession: same terminal status both times, and the
	// gateway is never contacted.
	for i := 0; i < 2; i++ {
		result, err := service.VerifyPayment(context.Background(), "PAY-TEST-0001", userID, false)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusSuccess, result.Status)
	}
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	txnRepo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_ConcurrentVerifyLosesRaceGracefully(t *testing.T) {
	userID := uuid.New()
	txnRepo := new(MockTransactionRepository)
	cfgRepo := new(MockGatewayConfigRepository)
	gw := new(MockGateway)

	txnRepo.On("GetByReference", mock.Anything, "PAY-TEST-0001").Return(&model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusPending,
	}, nil)
	cfgRepo.On("GetActive", mock.Anything).Return(activeConfig(), nil)
	gw.On("Verify", mock.Anything, mock.Anything, "PAY-TEST-0001").Return(&provider.VerifyResponse{
		Status: provider.StatusSuccess,
	}, nil)
	// Another process already transitioned the row: transitioned=false, the
	// stored terminal record is returned.
	paidAt := time.Now()
	txnRepo.On("MarkSuccess", mock.Anything, "PAY-TEST-0001", mock.Anything).Return(&model.PaymentTransaction{
		Reference: "PAY-TEST-0001",
		UserID:    userID,
		Status:    model.TransactionStatusSuccess,
		PaidAt:    &paidAt,
	}, false, nil)

	service := newService(txnRepo, cfgRepo, gw, nil)
	result, err := service.VerifyPayment(context.Background(), "PAY-TEST-0001", userID, false)

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSuccess, result.Status)
}
