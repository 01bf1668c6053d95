package repository

import (
	"context"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// DealershipRepository persists dealership tenants (§3).
type DealershipRepository interface {
	Create(ctx context.Context, d *domain.Dealership) error
	GetByID(ctx context.Context, id string) (*domain.Dealership, error)
	GetByIntegrationPhone(ctx context.Context, provider, phone string) (*domain.Dealership, error)
	GetDefault(ctx context.Context) (*domain.Dealership, error)
	Update(ctx context.Context, d *domain.Dealership) error
	List(ctx context.Context) ([]*domain.Dealership, error)
}

// UserProfileRepository persists dealership staff accounts (§3, §4.13).
type UserProfileRepository interface {
	Create(ctx context.Context, u *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	GetByEmail(ctx context.Context, dealershipID, email string) (*domain.UserProfile, error)
	ListByDealership(ctx context.Context, dealershipID string) ([]*domain.UserProfile, error)
	Update(ctx context.Context, u *domain.UserProfile) error
	Delete(ctx context.Context, id string) error
}

// LeadRepository persists customer leads (§3, §4.2).
type LeadRepository interface {
	Create(ctx context.Context, l *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetByPhone(ctx context.Context, dealershipID, phone string) (*domain.Lead, error)
	GetByPhoneAnyDealership(ctx context.Context, phone string) (*domain.Lead, error)
	ListByAssignedUser(ctx context.Context, userID string) ([]*domain.Lead, error)
	ListByDealership(ctx context.Context, dealershipID string) ([]*domain.Lead, error)
	Update(ctx context.Context, l *domain.Lead) error
}

// ConversationRepository persists conversation turns (§3, §4.5).
type ConversationRepository interface {
	Append(ctx context.Context, turn *domain.ConversationTurn) error
	ListByLead(ctx context.Context, leadID string, limit int) ([]*domain.ConversationTurn, error)
}

// InventoryRepository persists vehicle inventory rows (§3, §4.6).
type InventoryRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	Update(ctx context.Context, v *domain.Vehicle) error
	ListByDealership(ctx context.Context, dealershipID string, onlyAvailable bool) ([]*domain.Vehicle, error)
}

// EmbeddingRepository persists vehicle embeddings used by the retriever (§4.6).
type EmbeddingRepository interface {
	Upsert(ctx context.Context, e *domain.VehicleEmbedding) error
	ListByDealership(ctx context.Context, dealershipID string) ([]*domain.VehicleEmbedding, error)
	DeleteByVehicleID(ctx context.Context, vehicleID string) error
}

// ApprovalRepository persists pending-approval drafts (§4.14).
type ApprovalRepository interface {
	Create(ctx context.Context, a *domain.PendingApproval) error
	GetByID(ctx context.Context, id string) (*domain.PendingApproval, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*domain.PendingApproval, error)
	Update(ctx context.Context, a *domain.PendingApproval) error
}

// SettingsRepository persists setting definitions and dealership/user overrides (§4.12).
type SettingsRepository interface {
	SeedDefinitions(ctx context.Context) error
	Definitions(ctx context.Context) ([]*domain.SettingDefinition, error)
	GetDealershipValue(ctx context.Context, dealershipID, key string) (string, bool, error)
	SetDealershipValue(ctx context.Context, dealershipID, key, value string) error
	GetUserValue(ctx context.Context, userID, key string) (string, bool, error)
	SetUserValue(ctx context.Context, userID, key, value string) error
	DeleteUserValue(ctx context.Context, userID, key string) error
}

// InviteRepository persists dealership staff invites (§4.13).
type InviteRepository interface {
	Create(ctx context.Context, inv *domain.Invite) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error)
	ListByDealership(ctx context.Context, dealershipID string) ([]*domain.Invite, error)
	Update(ctx context.Context, inv *domain.Invite) error
}

// RepositoryManager combines every repository and the transaction boundary (§3).
type RepositoryManager interface {
	Dealerships() DealershipRepository
	UserProfiles() UserProfileRepository
	Leads() LeadRepository
	Conversations() ConversationRepository
	Inventory() InventoryRepository
	Embeddings() EmbeddingRepository
	Approvals() ApprovalRepository
	Settings() SettingsRepository
	Invites() InviteRepository

	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error
	Ping(ctx context.Context) error
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM, following the
// teacher's single-DB repository-manager wiring (internal/repository/db.go).
type GormRepositoryManager struct {
	db *gorm.DB

	dealerships   *GormDealershipRepository
	userProfiles  *GormUserProfileRepository
	leads         *GormLeadRepository
	conversations *GormConversationRepository
	inventory     *GormInventoryRepository
	embeddings    *GormEmbeddingRepository
	approvals     *GormApprovalRepository
	settings      *GormSettingsRepository
	invites       *GormInviteRepository
}

// NewGormRepositoryManager creates a new GORM-backed repository manager.
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:            db,
		dealerships:   NewGormDealershipRepository(db),
		userProfiles:  NewGormUserProfileRepository(db),
		leads:         NewGormLeadRepository(db),
		conversations: NewGormConversationRepository(db),
		inventory:     NewGormInventoryRepository(db),
		embeddings:    NewGormEmbeddingRepository(db),
		approvals:     NewGormApprovalRepository(db),
		settings:      NewGormSettingsRepository(db),
		invites:       NewGormInviteRepository(db),
	}
}

func (m *GormRepositoryManager) Dealerships() DealershipRepository   { return m.dealerships }
func (m *GormRepositoryManager) UserProfiles() UserProfileRepository { return m.userProfiles }
func (m *GormRepositoryManager) Leads() LeadRepository               { return m.leads }
func (m *GormRepositoryManager) Conversations() ConversationRepository { return m.conversations }
func (m *GormRepositoryManager) Inventory() InventoryRepository     { return m.inventory }
func (m *GormRepositoryManager) Embeddings() EmbeddingRepository    { return m.embeddings }
func (m *GormRepositoryManager) Approvals() ApprovalRepository      { return m.approvals }
func (m *GormRepositoryManager) Settings() SettingsRepository       { return m.settings }
func (m *GormRepositoryManager) Invites() InviteRepository          { return m.invites }

// WithTx executes fn within a database transaction, handing it a manager
// whose repositories all operate against the transaction's *gorm.DB.
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection.
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
