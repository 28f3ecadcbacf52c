package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/event"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// eventPublisher 事件发布器(真实MQ或Nop)
type eventPublisher interface {
	apporder.EventPublisher
	Close() error
}

func main() {
	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		return
	}

	log := logger.Init(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	log.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName),
		"redis", cfg.Redis.Addr())

	// 2. 指标与链路追踪
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Error("初始化链路追踪失败", "error", err)
			return
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("关闭链路追踪失败", "error", err)
			}
		}()
	}

	// 3. 存储连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Error("初始化数据库失败", "error", err)
		return
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Error("初始化Redis失败", "error", err)
		return
	}
	defer redisClient.Close()

	// 4. 事件发布器
	var events eventPublisher
	if cfg.MQ.Enabled {
		pub, err := event.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
		if err != nil {
			log.Error("初始化事件发布器失败", "error", err)
			return
		}
		events = pub
	} else {
		log.Info("事件发布已禁用(mq.enabled=false)")
		events = event.NopPublisher{}
	}
	defer events.Close()

	// 5. 依赖注入(手动组装)
	// Repository ← Service ← UseCase ← Handler
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)

	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT)
	profileUseCase := appuser.NewProfileUseCase(userRepo)
	changePasswordUseCase := appuser.NewChangePasswordUseCase(userRepo, userService, sessionStore, cfg.JWT)
	listUsersUseCase := appuser.NewListUsersUseCase(userRepo)

	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)

	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, bookRepo, txManager, events, cfg.Order)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	payOrderUseCase := apporder.NewPayOrderUseCase(orderRepo, events)
	deliverOrderUseCase := apporder.NewDeliverOrderUseCase(orderRepo, events)

	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, profileUseCase, changePasswordUseCase, listUsersUseCase)
	bookHandler := handler.NewBookHandler(publishBookUseCase, getBookUseCase, listBooksUseCase, updateBookUseCase)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, getOrderUseCase, listOrdersUseCase, payOrderUseCase, deliverOrderUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. Gin引擎与路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Tracing(), middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, orderHandler, authMiddleware)

	// 7. 启动HTTP服务并等待退出信号
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("服务启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("服务异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// 优雅关闭:等待在途请求完成,最多10秒
	log.Info("收到退出信号, 开始关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("关闭服务失败", "error", err)
		return
	}
	log.Info("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查与运维端点
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("", authMiddleware.RequireAuth())
			{
				authed.POST("/logout", userHandler.Logout)
				authed.GET("/profile", userHandler.GetProfile)
				authed.PUT("/profile", userHandler.UpdateProfile)
				authed.PUT("/password", userHandler.ChangePassword)

				// 管理端
				authed.GET("", authMiddleware.RequireAdmin(), userHandler.ListUsers)
			}
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			// 需要登录(权限细则由领域服务校验:发布者本人或管理员)
			authed := books.Group("", authMiddleware.RequireAuth())
			{
				authed.POST("", bookHandler.PublishBook)
				authed.PUT("/:id", bookHandler.UpdateBook)
				authed.PUT("/:id/restock", bookHandler.RestockBook)
				authed.DELETE("/:id", bookHandler.DeleteBook)
			}
		}

		// 订单模块(全部需要登录)
		orders := v1.Group("/orders", authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/myorders", orderHandler.ListMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/pay", orderHandler.PayOrder)

			// 管理员接口
			orders.GET("", authMiddleware.RequireAdmin(), orderHandler.ListOrders)
			orders.PUT("/:id/deliver", authMiddleware.RequireAdmin(), orderHandler.DeliverOrder)
		}
	}
}
