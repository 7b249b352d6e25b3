package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

type (
	// RecordStore is the read side the statistics aggregator depends on.
	RecordStore interface {
		// ListOrders returns orders created within tr, oldest first.
		ListOrders(ctx context.Context, tr entity.TimeRange) ([]entity.Order, error)
		// ListReceipts returns receipts whose timestamp falls within tr, oldest first.
		ListReceipts(ctx context.Context, tr entity.TimeRange) ([]entity.Receipt, error)
	}

	Order interface {
		// AddOrder persists a new order. Id and CreatedAt must be set.
		AddOrder(ctx context.Context, o *entity.Order) error
		GetOrderById(ctx context.Context, id string) (*entity.Order, error)
		// ListAllOrders returns every order, newest first.
		ListAllOrders(ctx context.Context) ([]entity.Order, error)
		// SearchOrders returns orders matching the buyer email (case-insensitive)
		// or phone, newest first.
		SearchOrders(ctx context.Context, email, phone string) ([]entity.Order, error)
		UpdateOrder(ctx context.Context, id string, upd entity.OrderUpdate) (*entity.Order, error)
		DeleteOrder(ctx context.Context, id string) error
	}

	Receipt interface {
		// SaveReceipt stores a receipt, rejecting duplicate ids.
		SaveReceipt(ctx context.Context, r *entity.Receipt) error
		GetReceiptById(ctx context.Context, id string) (*entity.Receipt, error)
		// ListReceiptsPaged returns receipts newest first and the total count.
		ListReceiptsPaged(ctx context.Context, limit, offset int) ([]entity.Receipt, int, error)
	}

	Settings interface {
		GetShippingSettings(ctx context.Context) (*entity.ShippingSettings, error)
		SetShippingFees(ctx context.Context, fees map[string]decimal.Decimal) error
		SetMainShopTown(ctx context.Context, town string) error
		SetFreeShipping(ctx context.Context, threshold decimal.Decimal, regions map[string]bool) error
		// GetHeroSection returns the stored banner, or the default one.
		GetHeroSection(ctx context.Context) (*entity.HeroSection, error)
		SetHeroSection(ctx context.Context, h *entity.HeroSection) error
	}

	Products interface {
		// AddProduct persists a new product. Id and CreatedAt must be set.
		AddProduct(ctx context.Context, p *entity.Product) error
		GetProductById(ctx context.Context, id string) (*entity.Product, error)
		// ListProducts returns the catalogue, newest first.
		ListProducts(ctx context.Context) ([]entity.Product, error)
		// UpdateProduct replaces the stored product with the same id.
		UpdateProduct(ctx context.Context, p *entity.Product) error
		DeleteProduct(ctx context.Context, id string) error
	}

	Chat interface {
		// AddChatMessage stores m and sets its id.
		AddChatMessage(ctx context.Context, m *entity.ChatMessage) error
		// ListChatMessages returns the conversation of deviceId, oldest first.
		ListChatMessages(ctx context.Context, deviceId string) ([]entity.ChatMessage, error)
		// ListAllChatMessages returns every message, oldest first.
		ListAllChatMessages(ctx context.Context) ([]entity.ChatMessage, error)
		// MarkConversationRead flags the customer messages of deviceId as read.
		MarkConversationRead(ctx context.Context, deviceId string) error
		DeleteConversation(ctx context.Context, deviceId string) error
	}

	Admin interface {
		AddSubAdmin(ctx context.Context, sa *entity.SubAdmin) error
		UpdateSubAdmin(ctx context.Context, sa *entity.SubAdmin) error
		DeleteSubAdmin(ctx context.Context, id string) error
		GetSubAdminById(ctx context.Context, id string) (*entity.SubAdmin, error)
		GetSubAdminByEmail(ctx context.Context, email string) (*entity.SubAdmin, error)
		ListSubAdmins(ctx context.Context) ([]entity.SubAdmin, error)
	}

	Mail interface {
		AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error)
		GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error)
		UpdateSent(ctx context.Context, id int) error
		AddError(ctx context.Context, id int, errMsg string) error
	}

	Repository interface {
		Order() Order
		Receipt() Receipt
		Settings() Settings
		Admin() Admin
		Mail() Mail
		Products() Products
		Chat() Chat
		Records() RecordStore
		Ping(ctx context.Context) error
		Close()
	}

	// Sender delivers a single email through the provider API.
	Sender interface {
		SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
	}

	Mailer interface {
		QueueOrderConfirmation(ctx context.Context, o *entity.Order) error
		QueueOrderStatus(ctx context.Context, o *entity.Order) error
		Start(ctx context.Context) error
		Stop() error
	}

	// StatsCache keeps serialized statistics keyed by a data version. Bumping
	// the version makes every earlier entry unreachable.
	StatsCache interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
		Version(ctx context.Context) (int64, error)
		Bump(ctx context.Context) error
	}

	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)
