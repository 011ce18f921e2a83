// Package bootstrap wires configuration, connections and module routers
// into one running HTTP process.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	adminApi "restaurant-waste/internal/admin/api"
	adminApp "restaurant-waste/internal/admin/app"
	adminRepo "restaurant-waste/internal/admin/repo"
	authApi "restaurant-waste/internal/auth/api"
	authApp "restaurant-waste/internal/auth/app"
	authDomain "restaurant-waste/internal/auth/domain"
	authRepo "restaurant-waste/internal/auth/repo"
	donationApi "restaurant-waste/internal/donation/api"
	donationApp "restaurant-waste/internal/donation/app"
	donationRepo "restaurant-waste/internal/donation/repo"
	"restaurant-waste/internal/driver/adapter/handlers"
	"restaurant-waste/internal/driver/adapter/psql"
	driverRmq "restaurant-waste/internal/driver/adapter/rmq"
	"restaurant-waste/internal/driver/app/usecase"
	pickupApi "restaurant-waste/internal/pickup/api"
	pickupApp "restaurant-waste/internal/pickup/app"
	"restaurant-waste/internal/pickup/consumer"
	pickupRepo "restaurant-waste/internal/pickup/repo"
	rewardsApi "restaurant-waste/internal/rewards/api"
	rewardsApp "restaurant-waste/internal/rewards/app"
	rewardsRepo "restaurant-waste/internal/rewards/repo"
	"restaurant-waste/internal/shared/cache"
	"restaurant-waste/internal/shared/config"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/health"
	"restaurant-waste/internal/shared/jwt"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/mq"
	"restaurant-waste/internal/shared/server"
	"restaurant-waste/internal/shared/util"
	subscriptionApi "restaurant-waste/internal/subscription/api"
	subscriptionApp "restaurant-waste/internal/subscription/app"
	subscriptionRepo "restaurant-waste/internal/subscription/repo"
)

// platform holds the connections and shared components of one process.
type platform struct {
	cfg    *models.Config
	log    *util.Logger
	pool   *pgxpool.Pool
	tx     *db.TxManager
	tokens *jwt.Manager
	auth   func(http.Handler) http.Handler

	redis   *redis.Client
	rmqConn *amqp.Connection
	rmqCh   *amqp.Channel
	pub     *mq.Publisher
}

// needs lists the connections each service opens on top of PostgreSQL.
var needs = map[string]struct{ redis, rmq bool }{
	"auth":    {redis: true},
	"driver":  {rmq: true},
	"pickup":  {rmq: true},
	"rewards": {},
	"admin":   {},
	"all":     {redis: true, rmq: true},
}

// Services lists the names accepted by Run.
var Services = []string{"auth", "driver", "pickup", "rewards", "admin", "all"}

// Run starts the named service and blocks until the process is signalled.
func Run(service, configPath string) {
	if _, ok := needs[service]; !ok {
		fmt.Fprintf(os.Stderr, "unknown service %q\n", service)
		os.Exit(1)
	}

	name := service + "-service"
	boot := util.New()
	boot.Info(name, "Starting service initialization...")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		boot.Fatal("Config", "Failed to load configuration", err)
	}
	log := util.NewWithOptions(os.Stdout, cfg.Log.Level, cfg.Log.Format).With("service", name)
	log.OK("Config", "Configuration loaded successfully", "path", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &platform{cfg: cfg, log: log}

	p.pool, err = db.ConnectToDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Database", "Failed to connect to database", err)
	}
	defer p.pool.Close()
	log.OK("Database", "Connected successfully")

	if err := db.Migrate(ctx, p.pool); err != nil {
		log.Fatal("Database", "Failed to apply schema", err)
	}
	p.tx = db.NewTxManager(p.pool)

	p.tokens = jwt.NewManager(cfg.JWT)
	p.auth = middleware.Authenticate(p.tokens)

	if needs[service].redis {
		p.redis, err = cache.Connect(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Redis", "Failed to connect to Redis", err)
		}
		defer p.redis.Close()
		log.OK("Redis", "Connected successfully")
	}

	if needs[service].rmq {
		p.pub = mq.NewPublisher(nil)
		p.rmqConn, p.rmqCh, err = mq.ConnectToRMQ(&cfg.RabbitMQ, p.pub, log)
		if err != nil {
			log.Fatal("RabbitMQ", "Failed to connect to RabbitMQ", err)
		}
		defer p.rmqConn.Close()
		defer p.rmqCh.Close()
		log.OK("RabbitMQ", "Connected successfully")
	}

	r := server.NewRouter(log)
	r.Get("/health", health.Handler(name, health.Dependencies{DB: p.pool, RMQ: p.rmqConn, Redis: p.redis}))

	var port string
	switch service {
	case "auth":
		p.mountAuth(r)
		port = cfg.Services.AuthService
	case "driver":
		p.mountDriver(r)
		port = cfg.Services.DriverService
	case "pickup":
		p.mountPickup(ctx, r)
		port = cfg.Services.PickupService
	case "rewards":
		p.mountRewards(r)
		port = cfg.Services.RewardsService
	case "admin":
		p.mountAdmin(r)
		port = cfg.Services.AdminService
	case "all":
		p.mountAuth(r)
		p.mountDriver(r)
		p.mountPickup(ctx, r)
		p.mountRewards(r)
		p.mountAdmin(r)
		port = cfg.Services.AllInOne
	}

	server.Run(log, name, ":"+port, r)
}

// accounts builds the auth service. Services without Redis only use its
// account and profile lookups, which never touch refresh sessions.
func (p *platform) accounts() *authApp.AuthService {
	var sessions authDomain.SessionStore
	if p.redis != nil {
		sessions = authRepo.NewRedisSessions(p.redis)
	}
	return authApp.NewAuthService(authRepo.NewAuthRepo(p.pool), sessions, p.tokens, p.tx, p.log)
}

func (p *platform) ledger() *rewardsApp.Ledger {
	return rewardsApp.NewLedger(rewardsRepo.NewRewardsRepo(p.pool), p.tx, p.log)
}

func (p *platform) donations() *donationApp.DonationService {
	return donationApp.NewDonationService(donationRepo.NewDonationRepo(p.pool), p.ledger(), p.cfg.Donation, p.log)
}

func (p *platform) mountAuth(r chi.Router) {
	authApi.NewHandler(p.accounts(), p.log).RegisterRoutes(r, p.auth)
}

func (p *platform) mountDriver(r chi.Router) {
	service := usecase.NewService(psql.NewRepo(p.pool), driverRmq.NewBroker(p.pub), p.accounts(), p.tx, p.log)
	handlers.NewHandler(service, p.log).RegisterRoutes(r, p.auth)
}

func (p *platform) mountPickup(ctx context.Context, r chi.Router) {
	service := pickupApp.NewPickupService(pickupApp.Deps{
		Repo:        pickupRepo.NewPickupRepo(p.pool),
		Publisher:   p.pub,
		Tx:          p.tx,
		Ledger:      p.ledger(),
		Restaurants: p.accounts(),
		Drives:      p.donations(),
	}, p.cfg.Pickup, p.log)

	hub := pickupApi.NewHub(p.tokens, p.log)

	if err := consumer.NewStatusConsumer(p.rmqCh, hub, p.log).Start(ctx); err != nil {
		p.log.Fatal("StatusConsumer", "Failed to start pickup status consumer", err)
	}
	p.log.OK("StatusConsumer", "Started successfully")

	if err := consumer.NewLocationConsumer(p.rmqCh, service, hub, p.log).Start(ctx); err != nil {
		p.log.Fatal("LocationConsumer", "Failed to start location consumer", err)
	}
	p.log.OK("LocationConsumer", "Started successfully")

	pickupApi.NewHandler(service, hub, p.log).RegisterRoutes(r, p.auth)
}

func (p *platform) mountRewards(r chi.Router) {
	repo := rewardsRepo.NewRewardsRepo(p.pool)
	rewards := rewardsApp.NewRewardsService(repo, p.tx, p.ledger(), p.log)
	subscriptions := subscriptionApp.NewSubscriptionService(subscriptionRepo.NewSubscriptionRepo(p.pool), repo, p.tx, p.log)

	rewardsApi.NewHandler(rewards, p.log).RegisterRoutes(r, p.auth)
	donationApi.NewHandler(p.donations(), p.log).RegisterRoutes(r, p.auth)
	subscriptionApi.NewHandler(subscriptions, p.log).RegisterRoutes(r, p.auth)
}

func (p *platform) mountAdmin(r chi.Router) {
	repo := rewardsRepo.NewRewardsRepo(p.pool)
	catalog := adminApp.Catalog{
		Vouchers: rewardsApp.NewRewardsService(repo, p.tx, p.ledger(), p.log),
		Drives:   p.donations(),
		Plans:    subscriptionApp.NewSubscriptionService(subscriptionRepo.NewSubscriptionRepo(p.pool), repo, p.tx, p.log),
	}
	service := adminApp.NewAdminService(adminRepo.NewAdminRepo(p.pool), catalog, p.log)
	adminApi.NewHandler(service, p.log).RegisterRoutes(r, p.auth)
}

// ConfigPath returns $CONFIG_PATH, or config.yaml when it is unset.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
