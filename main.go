package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"mining-system/catalog"
	"mining-system/config"
	"mining-system/handlers"
	"mining-system/logging"
	"mining-system/services"
	"mining-system/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment")
	} else {
		fmt.Println("✅ .env file loaded and applied")
	}
	cfg := config.Load()

	logger, err := logging.InitLogger(cfg.Env == "release")
	if err != nil {
		log.Fatalf("❌ Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()

	// Хранилище: postgres для прода, memory для разработки
	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		st = store.NewMemory()
		log.Println("⚠️ Используется хранилище в памяти — данные не переживут перезапуск")
	default:
		pg, err := store.NewPostgres(context.Background(), cfg)
		if err != nil {
			log.Fatalf("❌ Ошибка подключения к БД: %v", err)
		}
		defer pg.Close()
		st = pg
	}

	// Каталог нод строится один раз и передаётся явно
	cat := catalog.Default()

	locks := services.NewLocks()
	ledger := services.NewLedger(st)
	referrals := services.NewReferrals(st, ledger, locks, cfg.ReferralReward)
	nodes := services.NewNodes(st, cat, ledger, referrals, services.MockTronVerifier{}, locks)
	withdrawals := services.NewWithdrawals(st, ledger, locks, cfg.MinWithdrawMine, cfg.MinWithdrawReferral)
	accounts := services.NewAccounts(st, ledger, referrals, cfg.SignupBonus)

	h := handlers.New(cfg, cat, accounts, ledger, nodes, referrals, withdrawals)
	r := handlers.SetupRouter(cfg, logger, h)

	baseURL := "http://localhost:" + cfg.Port
	fmt.Printf("\n============================================================\n")
	fmt.Printf("   ⛏️  TRX Mining Node API\n")
	fmt.Printf("============================================================\n\n")
	fmt.Printf("   📡 Health        %s/api/health\n", baseURL)
	fmt.Printf("   📡 Конфигурация  %s/api/config\n", baseURL)
	fmt.Printf("   🔐 Регистрация   %s/api/auth/signup\n", baseURL)
	fmt.Printf("   🔐 Вход          %s/api/auth/login\n", baseURL)
	fmt.Printf("   👤 Профиль       %s/api/user/profile\n", baseURL)
	fmt.Printf("   ⛏️  Ноды          %s/api/nodes\n", baseURL)
	fmt.Printf("   💳 Покупка       %s/api/nodes/purchase\n", baseURL)
	fmt.Printf("   💸 Вывод         %s/api/withdraw\n", baseURL)
	fmt.Printf("   🤝 Рефералы      %s/api/referrals\n", baseURL)
	fmt.Printf("   📈 Метрики       %s/metrics\n\n", baseURL)
	fmt.Printf("   ⚙️  Конфигурация: порт=%s, режим=%s, хранилище=%s\n", cfg.Port, cfg.Env, cfg.StoreBackend)
	fmt.Printf("============================================================\n")

	log.Printf("🚀 Сервер запущен на порту :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Сервер остановлен с ошибкой: %v", err)
	}
}
