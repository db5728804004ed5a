package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

const reconcileLockKey = "reconcile"

// ReconcileService 点赞缓存计数与流水的对账，由管理员手动触发
type ReconcileService struct {
	likeRepo *repository.LikeRepository
	locker   Locker
	archiver ReportArchiver
	events   *emitter
	lockTTL  time.Duration
}

func NewReconcileService(
	likeRepo *repository.LikeRepository,
	locker Locker,
	archiver ReportArchiver,
	pub EventPublisher,
	lockTTL time.Duration,
) *ReconcileService {
	if locker == nil {
		locker = noopLocker{}
	}
	if archiver == nil {
		archiver = noopArchiver{}
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &ReconcileService{
		likeRepo: likeRepo,
		locker:   locker,
		archiver: archiver,
		events:   newEmitter(pub),
		lockTTL:  lockTTL,
	}
}

// Diagnose 检查所有内容的计数偏差、孤儿点赞与指向已删除内容的点赞，不做任何修改
func (s *ReconcileService) Diagnose(ctx context.Context, actorID int64) (*dto.DiagnosticReport, error) {
	var report *dto.DiagnosticReport
	err := s.withLock(ctx, func() error {
		var err error
		report, err = s.diagnose()
		if err != nil {
			return err
		}
		report.ReportURL = s.archive(ctx, "diagnose", report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	level := model.LevelInfo
	if report.NeedsSync || report.NeedsCleanup {
		level = model.LevelWarn
	}
	s.events.emit(ctx, &model.EngagementEvent{
		Action:  model.ActionReconcileDiagnose,
		Level:   level,
		ActorID: actorID,
		Data: map[string]interface{}{
			"mismatches": report.TotalMismatches,
			"orphaned":   report.OrphanedLikes,
			"stale":      report.StaleLikes,
		},
	})
	return report, nil
}

// Sync 基于一次新的诊断，用流水计数覆盖所有不一致的缓存计数
func (s *ReconcileService) Sync(ctx context.Context, actorID int64) (*dto.SyncReport, error) {
	report := &dto.SyncReport{FixedByKind: make(map[string]int, len(model.AllContentKinds))}
	err := s.withLock(ctx, func() error {
		for _, kind := range model.AllContentKinds {
			mismatches, err := s.likeRepo.FindMismatches(kind)
			if err != nil {
				return fmt.Errorf("find %s mismatches: %w", kind, err)
			}
			for _, m := range mismatches {
				if err := s.likeRepo.SetCounter(kind, m.ID, m.LedgerCount); err != nil {
					return fmt.Errorf("set %s %d counter: %w", kind, m.ID, err)
				}
				logger.Info("Like counter synced",
					zap.String("kind", string(kind)),
					zap.Int64("content_id", m.ID),
					zap.Int64("stored", m.StoredCount),
					zap.Int64("real", m.LedgerCount),
				)
			}
			report.FixedByKind[string(kind)] = len(mismatches)
			report.TotalFixed += len(mismatches)
		}
		report.GeneratedAt = time.Now()
		report.ReportURL = s.archive(ctx, "sync", report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.emit(ctx, &model.EngagementEvent{
		Action:  model.ActionReconcileSync,
		ActorID: actorID,
		Data:    map[string]interface{}{"fixed": report.TotalFixed, "by_kind": report.FixedByKind},
	})
	return report, nil
}

// CleanupOrphaned 删除指向不存在或已删除内容的点赞流水
func (s *ReconcileService) CleanupOrphaned(ctx context.Context, actorID int64) (*dto.CleanupReport, error) {
	report := &dto.CleanupReport{
		OrphanedByKind: make(map[string]int64, len(model.AllContentKinds)),
		StaleByKind:    make(map[string]int64, len(model.AllContentKinds)),
	}
	err := s.withLock(ctx, func() error {
		for _, kind := range model.AllContentKinds {
			orphaned, err := s.likeRepo.DeleteOrphaned(kind)
			if err != nil {
				return fmt.Errorf("delete %s orphaned likes: %w", kind, err)
			}
			stale, err := s.likeRepo.DeleteStale(kind)
			if err != nil {
				return fmt.Errorf("delete %s stale likes: %w", kind, err)
			}
			report.OrphanedByKind[string(kind)] = orphaned
			report.StaleByKind[string(kind)] = stale
			report.TotalRemoved += orphaned + stale
		}
		report.GeneratedAt = time.Now()
		report.ReportURL = s.archive(ctx, "cleanup", report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Orphaned likes cleaned up", zap.Int64("removed", report.TotalRemoved))
	s.events.emit(ctx, &model.EngagementEvent{
		Action:  model.ActionReconcileCleanup,
		ActorID: actorID,
		Data:    map[string]interface{}{"removed": report.TotalRemoved},
	})
	return report, nil
}

func (s *ReconcileService) diagnose() (*dto.DiagnosticReport, error) {
	report := &dto.DiagnosticReport{Kinds: make([]dto.KindDiagnosis, 0, len(model.AllContentKinds))}

	for _, kind := range model.AllContentKinds {
		mismatches, err := s.likeRepo.FindMismatches(kind)
		if err != nil {
			return nil, fmt.Errorf("find %s mismatches: %w", kind, err)
		}
		orphaned, err := s.likeRepo.CountOrphaned(kind)
		if err != nil {
			return nil, fmt.Errorf("count %s orphaned likes: %w", kind, err)
		}
		stale, err := s.likeRepo.CountStale(kind)
		if err != nil {
			return nil, fmt.Errorf("count %s stale likes: %w", kind, err)
		}

		kd := dto.KindDiagnosis{
			Kind:          string(kind),
			Mismatches:    make([]dto.CounterMismatch, 0, len(mismatches)),
			OrphanedLikes: orphaned,
			StaleLikes:    stale,
		}
		for _, m := range mismatches {
			kd.Mismatches = append(kd.Mismatches, dto.CounterMismatch{
				ID:     m.ID,
				Label:  m.Label,
				Stored: m.StoredCount,
				Real:   m.LedgerCount,
			})
		}
		report.Kinds = append(report.Kinds, kd)
		report.TotalMismatches += len(mismatches)
		report.OrphanedLikes += orphaned
		report.StaleLikes += stale
	}

	report.NeedsSync = report.TotalMismatches > 0
	report.NeedsCleanup = report.OrphanedLikes+report.StaleLikes > 0
	report.GeneratedAt = time.Now()
	return report, nil
}

// withLock 三个对账操作互斥执行，重叠调用直接返回 ErrReconcileBusy
func (s *ReconcileService) withLock(ctx context.Context, fn func() error) error {
	unlock, ok, err := s.locker.TryLock(ctx, reconcileLockKey, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire reconcile lock: %w", err)
	}
	if !ok {
		return ErrReconcileBusy
	}
	defer unlock()
	return fn()
}

// archive 归档报告，失败只记日志
func (s *ReconcileService) archive(ctx context.Context, kind string, report interface{}) string {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Warn("Marshal reconcile report failed", zap.Error(err))
		return ""
	}

	name := fmt.Sprintf("%s/%s.json", kind, time.Now().UTC().Format("20060102T150405.000Z"))
	url, err := s.archiver.Archive(ctx, name, payload)
	if err != nil {
		logger.Warn("Archive reconcile report failed",
			zap.String("object", name),
			zap.Error(err),
		)
		return ""
	}
	return url
}
