package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		logger.Fatal("unable to run migrations", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	logger.Info("Connecting to postgres", "host", c.PostgresHost, "db", c.PostgresDB, "port", c.PostgresPort)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d TimeZone=Asia/Kolkata",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if !c.IsProd() {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		logger.Fatal("unable to connect to postgres", err)
	}

	return gormDB
}

func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{ID: uuid.New(), Name: models.RoleAdmin},
		{ID: uuid.New(), Name: models.RoleUser},
	}

	for _, role := range roles {
		if err := db.FirstOrCreate(&role, models.Role{Name: role.Name}).Error; err != nil {
			return err
		}
	}

	return nil
}

// PromoteAdmins gives the Admin role to existing users with the given emails.
func PromoteAdmins(db *gorm.DB, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	var admin models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return err
	}
	return db.Model(&models.User{}).Where("email IN ?", emails).Update("role_id", admin.ID).Error
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Blacklist{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.WithdrawalSettings{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CreatorCoinRequest{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrations error: %v", err)
	}

	if err := SeedRoles(db); err != nil {
		return fmt.Errorf("seeding roles error: %v", err)
	}

	return nil
}
