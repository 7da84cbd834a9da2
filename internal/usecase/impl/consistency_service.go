package impl

import (
	"context"
	"log/slog"

	deliverycontext "userstore/internal/delivery/context"
	"userstore/internal/domain/entity"
	"userstore/internal/domain/repository"
	"userstore/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// consistencyService implements the ConsistencyUsecase interface.
type consistencyService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// ConsistencyServiceParams holds dependencies for ConsistencyService, injected by Fx.
type ConsistencyServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewConsistencyService is the constructor for consistencyService.
func NewConsistencyService(params ConsistencyServiceParams) usecase.ConsistencyUsecase {
	return &consistencyService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *consistencyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Check compares every user's login list with the login index. It writes nothing.
func (srv *consistencyService) Check(ctx context.Context) (*usecase.ConsistencyReport, error) {
	var report *usecase.ConsistencyReport
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		report, err = srv.scan(ctx, repoFactory)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to check login index")
	}

	if !report.Consistent() {
		srv.log(ctx).Warn("Login index drift detected",
			slog.Int("missing", len(report.Missing)),
			slog.Int("orphans", len(report.Orphans)),
			slog.Int("conflicts", len(report.Conflicts)),
		)
	}

	return report, nil
}

// Repair makes the index match the users' login lists: missing entries are upserted and
// orphans deleted. Logins claimed by two users are reported and left alone.
func (srv *consistencyService) Repair(ctx context.Context) (*usecase.ConsistencyReport, error) {
	var report *usecase.ConsistencyReport
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		report, err = srv.scan(ctx, repoFactory)
		if err != nil {
			return err
		}

		logins := repoFactory.LoginRepo()
		for _, issue := range report.Orphans {
			if err := logins.Delete(ctx, issue.Provider, issue.ProviderKey); err != nil {
				return errors.Wrapf(err, "failed to delete orphan %s", issue.Key)
			}
		}
		for _, issue := range report.Missing {
			if err := logins.Upsert(ctx, issue.Provider, issue.ProviderKey, issue.UserID); err != nil {
				return errors.Wrapf(err, "failed to restore entry %s", issue.Key)
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to repair login index", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to repair login index")
	}

	srv.log(ctx).Info("Login index repaired",
		slog.Int("restored", len(report.Missing)),
		slog.Int("removed", len(report.Orphans)),
		slog.Int("conflicts", len(report.Conflicts)),
	)

	return report, nil
}

func (srv *consistencyService) scan(ctx context.Context, repoFactory repository.RepositoryFactory) (*usecase.ConsistencyReport, error) {
	users, err := repoFactory.UserRepo().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	entries, err := repoFactory.LoginRepo().ListAll(ctx, entity.LoginKeyPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list login index")
	}

	byKey := make(map[string]*entity.LoginIndexEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	claimants := make(map[string]int)
	for _, u := range users {
		for _, l := range u.Logins {
			claimants[entity.LoginKey(l.LoginProvider, l.ProviderKey)]++
		}
	}

	report := &usecase.ConsistencyReport{Users: len(users), IndexEntries: len(entries)}

	for _, u := range users {
		for _, l := range u.Logins {
			key := entity.LoginKey(l.LoginProvider, l.ProviderKey)
			issue := usecase.LoginIssue{Key: key, UserID: u.ID, Provider: l.LoginProvider, ProviderKey: l.ProviderKey}

			entry, indexed := byKey[key]
			if indexed {
				if entry.UserID == u.ID {
					continue
				}
				issue.IndexedUserID = entry.UserID
			}

			if claimants[key] > 1 {
				report.Conflicts = append(report.Conflicts, issue)

				continue
			}
			report.Missing = append(report.Missing, issue)
		}
	}

	for _, e := range entries {
		if ownsLogin(byID[e.UserID], entity.UserLogin{LoginProvider: e.Provider, ProviderKey: e.ProviderKey}) {
			continue
		}
		report.Orphans = append(report.Orphans, usecase.LoginIssue{
			Key:         e.Key,
			UserID:      e.UserID,
			Provider:    e.Provider,
			ProviderKey: e.ProviderKey,
		})
	}

	return report, nil
}

func ownsLogin(user *entity.User, login entity.UserLogin) bool {
	return user != nil && user.HasLogin(login.LoginProvider, login.ProviderKey)
}
