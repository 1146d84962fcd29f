package store

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"staybook/pkg/common/config"
	bookingmodel "staybook/pkg/core/booking/model"
	bookingdao "staybook/pkg/core/booking/repository/dao"
	bookinggorm "staybook/pkg/core/booking/repository/dao/impl"
	bookingmongo "staybook/pkg/core/booking/repository/dao/mongodb"
	placemodel "staybook/pkg/core/place/model"
	placedao "staybook/pkg/core/place/repository/dao"
	placegorm "staybook/pkg/core/place/repository/dao/impl"
	placemongo "staybook/pkg/core/place/repository/dao/mongodb"
	usermodel "staybook/pkg/core/user/model"
	userdao "staybook/pkg/core/user/repository/dao"
	usergorm "staybook/pkg/core/user/repository/dao/impl"
	usermongo "staybook/pkg/core/user/repository/dao/mongodb"
)

// Store 三个集合的仓储以及底层连接的生命周期
type Store struct {
	Users    userdao.UserRepository
	Places   placedao.PlaceRepository
	Bookings bookingdao.BookingRepository

	driver string
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

func (s *Store) Driver() string {
	return s.driver
}

// Ping 健康检查使用
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open 按配置选择存储后端
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo, "":
		return openMongo(ctx, cfg)
	case config.DriverMySQL:
		return openMySQL(ctx, cfg)
	case config.DriverMemory:
		hlog.Warnf("using in-memory store, data is lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := cfg.InitMongo(ctx)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database.Mongo.Database)

	users := usermongo.NewMongoUserRepository(db)
	places := placemongo.NewMongoPlaceRepository(db)
	bookings := bookingmongo.NewMongoBookingRepository(db)

	for _, repo := range []indexer{users, places, bookings} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	hlog.Infof("connected to mongo database %s", cfg.Database.Mongo.Database)
	return &Store{
		Users:    users,
		Places:   places,
		Bookings: bookings,
		driver:   config.DriverMongo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}

func openMySQL(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := cfg.InitDB()
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	migrations := []func() error{
		func() error { return usermodel.AutoMigrate(db) },
		func() error { return placemodel.AutoMigrate(db) },
		func() error { return bookingmodel.AutoMigrate(db) },
	}
	for _, migrate := range migrations {
		if err := migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	hlog.Infof("connected to mysql database %s", cfg.Database.DBName)
	return &Store{
		Users:    usergorm.NewGormUserRepository(db),
		Places:   placegorm.NewGormPlaceRepository(db),
		Bookings: bookinggorm.NewGormBookingRepository(db),
		driver:   config.DriverMySQL,
		ping:     sqlDB.PingContext,
		close: func(context.Context) error {
			return sqlDB.Close()
		},
	}, nil
}
