package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock

	next    Status
	payment *Payment
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

// Create runs build against the products given to Return, then stamps the
// returned id and client name: Return(products, id, clientName, err).
func (m *MockRepository) Create(ctx context.Context, productIDs []int64, build BuildFunc) (*Order, error) {
	args := m.Called(ctx, productIDs, build)
	if err := args.Error(3); err != nil {
		return nil, err
	}

	o, err := build(args.Get(0).(map[int64]ProductSnapshot))
	if err != nil {
		return nil, err
	}
	o.ID = args.Get(1).(int64)
	o.Client.Name = args.String(2)
	return o, nil
}

// UpdateStatus applies the transition to the status given to Return and
// records the decision: Return(current, err).
func (m *MockRepository) UpdateStatus(ctx context.Context, id int64, apply TransitionFunc) error {
	args := m.Called(ctx, id, apply)
	if err := args.Error(1); err != nil {
		return err
	}

	next, payment, err := apply(args.Get(0).(Status))
	m.next, m.payment = next, payment
	return err
}

// --- Fixtures ---

var (
	maria = auth.Principal{UserID: 1, Email: "maria@gmail.com", Roles: []auth.Role{auth.RoleClient}}
	alex  = auth.Principal{UserID: 2, Email: "alex@gmail.com", Roles: []auth.Role{auth.RoleClient, auth.RoleAdmin}}
	ana   = auth.Principal{UserID: 3, Email: "ana@gmail.com", Roles: []auth.Role{auth.RoleAdmin}}
)

var fixedNow = time.Date(2024, 3, 10, 12, 30, 45, 999, time.FixedZone("BRT", -3*3600))

func newTestService() (*service, *MockRepository) {
	repo := new(MockRepository)
	svc := NewService(repo, auth.NewGuard()).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func mariasOrder() *Order {
	return &Order{
		ID:     1,
		Moment: time.Date(2022, 7, 25, 13, 0, 0, 0, time.UTC),
		Status: StatusPaid,
		Client: Client{ID: 1, Name: "Maria Brown"},
		Payment: &Payment{
			Moment: time.Date(2022, 7, 25, 15, 0, 0, 0, time.UTC),
		},
		Items: []Item{
			{ProductID: 1, Name: "The Lord of the Rings", Price: lordOfTheRings.Price, Quantity: 2},
			{ProductID: 3, Name: "Macbook Pro", Price: macbookPro.Price, Quantity: 1},
		},
	}
}

// --- Tests ---

func TestService_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("FindByID", ctx, int64(1)).Return(mariasOrder(), nil)

		o, err := svc.FindByID(ctx, maria, 1)
		require.NoError(t, err)
		assert.Equal(t, "Maria Brown", o.Client.Name)
		assert.Equal(t, "1431", o.Total().String())
	})

	t.Run("AdminNotOwner", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("FindByID", ctx, int64(1)).Return(mariasOrder(), nil)

		_, err := svc.FindByID(ctx, alex, 1)
		assert.NoError(t, err)
	})

	t.Run("OtherClientDenied", func(t *testing.T) {
		svc, repo := newTestService()
		other := mariasOrder()
		other.ID, other.Client = 2, Client{ID: 2, Name: "Alex Green"}
		repo.On("FindByID", ctx, int64(2)).Return(other, nil)

		o, err := svc.FindByID(ctx, maria, 2)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, apperror.ErrAccessDenied)
		assert.Equal(t, "Access denied. Should be self or admin", err.Error())
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("FindByID", ctx, int64(1000)).Return(nil, ErrOrderNotFound)

		_, err := svc.FindByID(ctx, alex, 1000)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("RepoError", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("FindByID", ctx, int64(1)).Return(nil, errors.New("db error"))

		_, err := svc.FindByID(ctx, maria, 1)
		assert.EqualError(t, err, "db error")
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	cart := Input{Items: []ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}}

	t.Run("Success", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, []int64{1, 5}, mock.Anything).
			Return(catalog(lordOfTheRings, railsForDummies), int64(4), "Maria Brown", nil)

		o, err := svc.Create(ctx, maria, cart)
		require.NoError(t, err)
		assert.Equal(t, int64(4), o.ID)
		assert.Equal(t, StatusWaitingPayment, o.Status)
		assert.Equal(t, Client{ID: 1, Name: "Maria Brown"}, o.Client)
		assert.Equal(t, time.Date(2024, 3, 10, 15, 30, 45, 0, time.UTC), o.Moment)
		assert.Nil(t, o.Payment)
		assert.Equal(t, "281.99", o.Total().String())
		repo.AssertExpectations(t)
	})

	t.Run("AdminAndClient", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, []int64{1, 5}, mock.Anything).
			Return(catalog(lordOfTheRings, railsForDummies), int64(5), "Alex Green", nil)

		o, err := svc.Create(ctx, alex, cart)
		require.NoError(t, err)
		assert.Equal(t, int64(2), o.OwnerID())
	})

	t.Run("AdminOnlyDenied", func(t *testing.T) {
		svc, repo := newTestService()

		o, err := svc.Create(ctx, ana, cart)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, apperror.ErrAccessDenied)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyItemsIsValidationForAnyCaller", func(t *testing.T) {
		for _, p := range []auth.Principal{maria, alex, ana} {
			svc, repo := newTestService()

			_, err := svc.Create(ctx, p, Input{})
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), "user %d", p.UserID)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, []int64{1, 5}, mock.Anything).
			Return(catalog(lordOfTheRings), int64(0), "", nil)

		_, err := svc.Create(ctx, maria, cart)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("RepoError", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, []int64{1, 5}, mock.Anything).
			Return(nil, int64(0), "", errors.New("db error"))

		_, err := svc.Create(ctx, maria, cart)
		assert.EqualError(t, err, "db error")
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2024, 3, 10, 13, 0, 0, 500, time.UTC)

	t.Run("WaitingToPaid", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(3), mock.Anything).Return(StatusWaitingPayment, nil)
		repo.On("FindByID", ctx, int64(3)).Return(&Order{ID: 3, Status: StatusPaid}, nil)

		o, err := svc.ConfirmPayment(ctx, 3, paidAt)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, o.Status)
		assert.Equal(t, StatusPaid, repo.next)
		require.NotNil(t, repo.payment)
		assert.Equal(t, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), repo.payment.Moment)
	})

	t.Run("AlreadyPaidIsNoop", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(1), mock.Anything).Return(StatusPaid, nil)
		repo.On("FindByID", ctx, int64(1)).Return(mariasOrder(), nil)

		_, err := svc.ConfirmPayment(ctx, 1, paidAt)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, repo.next)
		assert.Nil(t, repo.payment)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		for _, current := range []Status{StatusShipped, StatusDelivered, StatusCanceled} {
			svc, repo := newTestService()
			repo.On("UpdateStatus", ctx, int64(2), mock.Anything).Return(current, nil)

			_, err := svc.ConfirmPayment(ctx, 2, paidAt)
			assert.ErrorIs(t, err, apperror.ErrInvalidTransition, "from %s", current)
			repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(1000), mock.Anything).Return(Status(""), ErrOrderNotFound)

		_, err := svc.ConfirmPayment(ctx, 1000, paidAt)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("WaitingToCanceled", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(3), mock.Anything).Return(StatusWaitingPayment, nil)
		repo.On("FindByID", ctx, int64(3)).Return(&Order{ID: 3, Status: StatusCanceled}, nil)

		o, err := svc.Cancel(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, StatusCanceled, o.Status)
		assert.Equal(t, StatusCanceled, repo.next)
		assert.Nil(t, repo.payment)
	})

	t.Run("AlreadyCanceledIsNoop", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(3), mock.Anything).Return(StatusCanceled, nil)
		repo.On("FindByID", ctx, int64(3)).Return(&Order{ID: 3, Status: StatusCanceled}, nil)

		_, err := svc.Cancel(ctx, 3)
		assert.NoError(t, err)
	})

	t.Run("PaidCannotBeCanceledByPayment", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateStatus", ctx, int64(1), mock.Anything).Return(StatusPaid, nil)

		_, err := svc.Cancel(ctx, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
