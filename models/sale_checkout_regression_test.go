package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

func TestCheckoutDecrementsStockAndNumbersReceipts(t *testing.T) {
	ctx, warung := setupWarungTestEnv(t, "owner-checkout")

	kopi, err := models.CreateProduct(ctx, warung.ID, &models.NewProduct{
		Name:  "Kopi Sachet",
		Price: decimal.NewFromInt(2000),
		Stock: 10,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// First sale: cash settles immediately.
	sale1, err := models.CreateSale(ctx, warung.ID, &models.NewSale{
		PaymentType: models.PaymentTypeCash,
		Items:       []models.NewSaleItem{{ProductId: kopi.ID, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("CreateSale #1: %v", err)
	}

	day := utils.StartOfDay(time.Now(), warung.Location())
	if want := utils.FormatReceiptNo(day, 1); sale1.ReceiptNo != want {
		t.Errorf("first receipt: got %q, want %q", sale1.ReceiptNo, want)
	}
	if sale1.IsPaid == nil || !*sale1.IsPaid {
		t.Error("cash sale must be paid at checkout")
	}
	if !sale1.TotalAmount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("total: got %s, want 6000", sale1.TotalAmount)
	}

	// Second sale: QRIS starts unpaid and takes the next number.
	sale2, err := models.CreateSale(ctx, warung.ID, &models.NewSale{
		PaymentType: models.PaymentTypeQris,
		Items:       []models.NewSaleItem{{ProductId: kopi.ID, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("CreateSale #2: %v", err)
	}
	if want := utils.FormatReceiptNo(day, 2); sale2.ReceiptNo != want {
		t.Errorf("second receipt: got %q, want %q", sale2.ReceiptNo, want)
	}
	if sale2.IsPaid != nil && *sale2.IsPaid {
		t.Error("QRIS sale must start unpaid")
	}

	// Stock reflects both checkouts.
	left, err := models.GetProduct(ctx, warung.ID, kopi.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if left.Stock != 5 {
		t.Errorf("stock after two sales: got %d, want 5", left.Stock)
	}

	// Each checkout left an audit activity and a pending outbox row.
	db := config.GetDB()
	var activityCount int64
	if err := db.Model(&models.WarungActivity{}).
		Where("warung_id = ? AND activity_type = ?", warung.ID, models.ActivitySaleCreated).
		Count(&activityCount).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if activityCount != 2 {
		t.Errorf("SALE_CREATED activities: got %d, want 2", activityCount)
	}
	var outboxCount int64
	if err := db.Model(&models.ActivityOutboxRecord{}).
		Where("warung_id = ? AND publish_status = ?", warung.ID, models.OutboxPublishStatusPending).
		Count(&outboxCount).Error; err != nil {
		t.Fatalf("count outbox rows: %v", err)
	}
	// product creation also exports an activity, so at least the two sales
	if outboxCount < 3 {
		t.Errorf("pending outbox rows: got %d, want >= 3", outboxCount)
	}

	// Settling the QRIS sale flips is_paid and appends an activity.
	settled, err := models.MarkSaleAsPaid(ctx, warung.ID, sale2.ID)
	if err != nil {
		t.Fatalf("MarkSaleAsPaid: %v", err)
	}
	if settled.IsPaid == nil || !*settled.IsPaid {
		t.Error("sale must be paid after MarkSaleAsPaid")
	}
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	ctx, warung := setupWarungTestEnv(t, "owner-rollback")

	teh, err := models.CreateProduct(ctx, warung.ID, &models.NewProduct{
		Name:  "Teh Botol",
		Price: decimal.NewFromInt(5000),
		Stock: 10,
	})
	if err != nil {
		t.Fatalf("CreateProduct teh: %v", err)
	}
	kerupuk, err := models.CreateProduct(ctx, warung.ID, &models.NewProduct{
		Name:  "Kerupuk",
		Price: decimal.NewFromInt(1000),
		Stock: 1,
	})
	if err != nil {
		t.Fatalf("CreateProduct kerupuk: %v", err)
	}

	// Second line exceeds stock; the whole checkout must roll back,
	// including the first line's decrement.
	_, err = models.CreateSale(ctx, warung.ID, &models.NewSale{
		PaymentType: models.PaymentTypeCash,
		Items: []models.NewSaleItem{
			{ProductId: teh.ID, Qty: 2},
			{ProductId: kerupuk.ID, Qty: 3},
		},
	})
	if !errors.Is(err, utils.ErrorInsufficientStock) {
		t.Fatalf("CreateSale: got err %v, want ErrorInsufficientStock", err)
	}

	for _, check := range []struct {
		id   int
		want int
	}{
		{teh.ID, 10},
		{kerupuk.ID, 1},
	} {
		p, err := models.GetProduct(ctx, warung.ID, check.id)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if p.Stock != check.want {
			t.Errorf("product %d stock after rollback: got %d, want %d", check.id, p.Stock, check.want)
		}
	}

	db := config.GetDB()
	var saleCount int64
	if err := db.Model(&models.Sale{}).
		Where("warung_id = ?", warung.ID).
		Count(&saleCount).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if saleCount != 0 {
		t.Errorf("sales after failed checkout: got %d, want 0", saleCount)
	}
	var activityCount int64
	if err := db.Model(&models.WarungActivity{}).
		Where("warung_id = ? AND activity_type = ?", warung.ID, models.ActivitySaleCreated).
		Count(&activityCount).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if activityCount != 0 {
		t.Errorf("SALE_CREATED activities after rollback: got %d, want 0", activityCount)
	}
}

func TestForeignWarungLooksLikeNotFound(t *testing.T) {
	ctx, warung := setupWarungTestEnv(t, "owner-tenancy")

	intruder, err := models.Register(ctx, &models.NewUser{
		Username: "intruder",
		Name:     "Intruder",
		Email:    "intruder@test.local",
		Password: "secretpw123",
	})
	if err != nil {
		t.Fatalf("Register intruder: %v", err)
	}
	intruderCtx := utils.SetUserIdInContext(context.Background(), intruder.ID)
	intruderCtx = utils.SetUsernameInContext(intruderCtx, intruder.Username)
	intruderCtx = utils.SetUserNameInContext(intruderCtx, intruder.Name)

	if _, err := models.GetWarung(intruderCtx, warung.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("foreign GetWarung: got %v, want ErrorRecordNotFound", err)
	}
	if _, err := models.GetProducts(intruderCtx, warung.ID, "", nil); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("foreign GetProducts: got %v, want ErrorRecordNotFound", err)
	}
}

/* shared docker-backed environment */

// setupWarungTestEnv boots redis+mysql containers, connects the globals,
// migrates a fresh schema and returns an authenticated owner context with
// one warung.
func setupWarungTestEnv(t *testing.T, owner string) (context.Context, *models.Warung) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "warungku_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	// registration mail is best-effort; no SMTP in tests
	user, err := models.Register(ctx, &models.NewUser{
		Username: owner,
		Name:     "Test Owner",
		Email:    owner + "@test.local",
		Password: "secretpw123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUsernameInContext(ctx, user.Username)
	ctx = utils.SetUserNameInContext(ctx, user.Name)

	warung, err := models.CreateWarung(ctx, &models.NewWarung{
		Name: "Warung Tes",
	})
	if err != nil {
		t.Fatalf("CreateWarung: %v", err)
	}
	return ctx, warung
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("warungku-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("warungku-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=warungku_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
