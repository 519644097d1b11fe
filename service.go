package goCred

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCred/internal/rate"
	"github.com/MrEthical07/goCred/jwt"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
)

// Service manages credential records in a [store.Store].
//
// Operations on the same username are serialized inside the process. Service
// is safe for concurrent use. Build one with [New].
type Service struct {
	config  Config
	store   store.Store
	engines *password.Registry
	salts   SaltGenerator
	limiter *rate.Limiter
	tokens  *jwt.Manager
	audit   *auditDispatcher
	metrics *Metrics
	locks   lockTable
	closed  atomic.Bool
}

// Close flushes queued audit events. Subsequent calls return [ErrEngineNotReady].
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.closed.Store(true)
	s.audit.Close()
}

// AuditDropped returns the number of audit events lost to a full buffer or a cancelled context.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot returns the current counters. It is empty when metrics are disabled.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// Engines returns the registry records are resolved against.
func (s *Service) Engines() *password.Registry {
	return s.engines
}

func (s *Service) ready() error {
	if s == nil || s.store == nil || s.closed.Load() {
		return ErrEngineNotReady
	}
	return nil
}

func (s *Service) metricInc(id MetricID) {
	s.metrics.Inc(id)
}

func (s *Service) recordOptions() []RecordOption {
	return []RecordOption{WithEngines(s.engines), WithSaltGenerator(s.salts)}
}

// Register creates a record for username under the default engine and saves it.
func (s *Service) Register(ctx context.Context, username, email, pw string) (*CredentialRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	defer s.locks.lock(username)()

	if _, err := s.load(ctx, username); err == nil {
		s.metricInc(MetricRegisterDuplicate)
		s.emitAudit(ctx, AuditEventRegister, false, username, "", ErrRecordExists, nil)
		return nil, ErrRecordExists
	} else if !errors.Is(err, store.ErrNotFound) {
		s.emitAudit(ctx, AuditEventRegister, false, username, "", err, nil)
		return nil, err
	}

	rec, err := NewCredentialRecord(username, email, s.config.Engine.Default, s.recordOptions()...)
	if err != nil {
		s.emitAudit(ctx, AuditEventRegister, false, username, "", err, nil)
		return nil, err
	}
	if err := s.setPassword(rec, pw, rec.Engine()); err != nil {
		s.emitAudit(ctx, AuditEventRegister, false, username, rec.Engine().String(), err, nil)
		return nil, err
	}
	if err := s.save(ctx, rec); err != nil {
		s.emitAudit(ctx, AuditEventRegister, false, username, rec.Engine().String(), err, nil)
		return nil, err
	}

	s.metricInc(MetricRegisterSuccess)
	s.emitAudit(ctx, AuditEventRegister, true, username, rec.Engine().String(), nil, nil)
	return rec, nil
}

// Authenticate checks pw against the stored record.
//
// Unknown usernames and wrong passwords both return [ErrInvalidCredentials].
// With login throttling enabled, [ErrLoginRateLimited] is returned once the
// failed-attempt budget is used up. With UpgradeOnLogin, a record stored under
// another engine is rehashed under the default engine; a failed upgrade is
// logged and does not fail the call.
func (s *Service) Authenticate(ctx context.Context, username, pw string) (*CredentialRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, username); err != nil {
			s.metricInc(MetricLoginRateLimited)
			s.emitAudit(ctx, AuditEventAuthenticate, false, username, "", ErrLoginRateLimited, nil)
			return nil, ErrLoginRateLimited
		}
	}

	defer s.locks.lock(username)()

	rec, err := s.load(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.authFailure(ctx, username, "", "user_not_found")
	}
	if err != nil {
		s.emitAudit(ctx, AuditEventAuthenticate, false, username, "", err, nil)
		return nil, err
	}

	ok, err := s.validate(rec, pw)
	if err != nil && !errors.Is(err, ErrPasswordTooLong) {
		return nil, err
	}
	if !ok {
		return nil, s.authFailure(ctx, username, rec.Engine().String(), "password_mismatch")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			log.Print("goCred: login limiter reset failed after successful authentication")
		}
	}

	s.metricInc(MetricValidateSuccess)
	s.emitAudit(ctx, AuditEventAuthenticate, true, username, rec.Engine().String(), nil, nil)

	if s.config.Engine.UpgradeOnLogin && rec.Engine() != s.config.Engine.Default {
		rec = s.upgrade(ctx, rec, pw)
	}

	return rec, nil
}

func (s *Service) authFailure(ctx context.Context, username, engine, reason string) error {
	s.metricInc(MetricValidateFailure)
	s.emitAudit(ctx, AuditEventAuthenticate, false, username, engine, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"reason": reason}
	})

	if s.limiter != nil {
		if err := s.limiter.RecordFailure(ctx, username); err != nil && !errors.Is(err, rate.ErrRateLimited) {
			log.Print("goCred: login limiter update failed")
		}
	}
	return ErrInvalidCredentials
}

// upgrade rehashes a copy of rec so a failed save leaves the caller's view
// consistent with the store.
func (s *Service) upgrade(ctx context.Context, rec *CredentialRecord, pw string) *CredentialRecord {
	from := rec.Engine().String()
	upgraded := *rec

	if err := s.setPassword(&upgraded, pw, s.config.Engine.Default); err != nil {
		log.Print("goCred: engine upgrade digest failed")
		return rec
	}
	if err := s.save(ctx, &upgraded); err != nil {
		log.Print("goCred: engine upgrade store update failed")
		return rec
	}

	s.metricInc(MetricEngineUpgraded)
	s.emitAudit(ctx, AuditEventEngineUpgrade, true, rec.Username(), upgraded.Engine().String(), nil, func() map[string]string {
		return map[string]string{"from": from}
	})
	return &upgraded
}

// ChangePassword replaces the password after checking oldPassword. The new
// digest uses the default engine.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := s.ready(); err != nil {
		return err
	}
	defer s.locks.lock(username)()

	rec, err := s.load(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}
	if err != nil {
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, "", err, nil)
		return err
	}

	ok, err := s.validate(rec, oldPassword)
	if err != nil && !errors.Is(err, ErrPasswordTooLong) {
		return err
	}
	if !ok {
		s.metricInc(MetricPasswordChangeInvalidOld)
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, rec.Engine().String(), ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(oldPassword), []byte(newPassword)) == 1 {
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, rec.Engine().String(), ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	if err := s.setPassword(rec, newPassword, s.config.Engine.Default); err != nil {
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, rec.Engine().String(), err, nil)
		return err
	}
	if err := s.save(ctx, rec); err != nil {
		s.emitAudit(ctx, AuditEventPasswordChange, false, username, rec.Engine().String(), err, nil)
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			log.Print("goCred: login limiter reset failed after password change")
		}
	}

	s.metricInc(MetricPasswordChangeSuccess)
	s.emitAudit(ctx, AuditEventPasswordChange, true, username, rec.Engine().String(), nil, nil)
	return nil
}

// Delete removes the record for username. Missing records return [ErrRecordNotFound].
func (s *Service) Delete(ctx context.Context, username string) error {
	if err := s.ready(); err != nil {
		return err
	}
	defer s.locks.lock(username)()

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, username); err != nil {
		s.storeFailure(err)
		s.emitAudit(ctx, AuditEventDelete, false, username, "", err, nil)
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			log.Print("goCred: login limiter reset failed after delete")
		}
	}

	s.metricInc(MetricRecordDeleted)
	s.emitAudit(ctx, AuditEventDelete, true, username, "", nil, nil)
	return nil
}

// Lookup returns the stored record without checking a password.
func (s *Service) Lookup(ctx context.Context, username string) (*CredentialRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	defer s.locks.lock(username)()

	return s.load(ctx, username)
}

// Login authenticates and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, pw string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if s.tokens == nil {
		return "", ErrTokensDisabled
	}

	rec, err := s.Authenticate(ctx, username, pw)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.CreateAccess(rec.Username(), rec.Engine().String())
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	s.metricInc(MetricTokenIssued)
	s.emitAudit(ctx, AuditEventTokenIssued, true, rec.Username(), rec.Engine().String(), nil, nil)
	return token, nil
}

// ParseToken verifies a token issued by Login.
func (s *Service) ParseToken(token string) (*jwt.AccessClaims, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.tokens == nil {
		return nil, ErrTokensDisabled
	}

	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

func (s *Service) setPassword(rec *CredentialRecord, pw string, kind password.Kind) error {
	start := time.Now()
	err := rec.Rehash(pw, kind)
	s.metrics.Observe(MetricDigestLatency, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			s.metricInc(MetricPasswordSetRejected)
		}
		return err
	}
	s.metricInc(MetricPasswordSetSuccess)
	return nil
}

func (s *Service) validate(rec *CredentialRecord, pw string) (bool, error) {
	start := time.Now()
	ok, err := rec.Validate(pw)
	if rec.HasPassword() {
		s.metrics.Observe(MetricDigestLatency, time.Since(start))
	}
	return ok, err
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Store.OperationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.Store.OperationTimeout)
}

func (s *Service) load(ctx context.Context, username string) (*CredentialRecord, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	persisted, err := s.store.Load(ctx, username)
	if err != nil {
		s.storeFailure(err)
		return nil, err
	}
	return RestoreCredentialRecord(persisted, s.recordOptions()...)
}

func (s *Service) save(ctx context.Context, rec *CredentialRecord) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.store.Save(ctx, rec.Snapshot()); err != nil {
		s.storeFailure(err)
		return err
	}
	return nil
}

func (s *Service) storeFailure(err error) {
	if !errors.Is(err, store.ErrNotFound) {
		s.metricInc(MetricStoreFailure)
	}
}
