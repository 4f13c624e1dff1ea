// 仿真系统的对外HTTP服务，提供REST控制接口与websocket推送
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/task"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/logbuffer"
)

const (
	// 步日志查询的默认条数
	defaultStepCount = 100
	// 日志查询的默认行数
	defaultLogLines = 50
	// 自动步进的默认间隔（秒）
	defaultStepInterval = 1.0
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 仪表盘页面与服务可能不同源
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server 仿真系统HTTP服务
// 功能：通过REST接口操控仿真任务，通过websocket向客户端推送步快照
type Server struct {
	ctx  *task.Context
	hub  *Hub
	logs *logbuffer.Buffer

	httpServer *http.Server
}

// New 创建HTTP服务
// 参数：ctx-仿真任务上下文，addr-监听地址，logs-日志环形缓冲（可为nil）
// 说明：创建时注册步快照广播回调，必须先于步进调用
func New(ctx *task.Context, addr string, logs *logbuffer.Buffer) *Server {
	s := &Server{
		ctx:  ctx,
		hub:  NewHub(),
		logs: logs,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router()}
	ctx.AddStepHook(func(snap entity.StepSnapshot) {
		s.hub.BroadcastSnapshot(snap)
		s.hub.BroadcastAnomalies(snap.Analytics.Anomalies)
	})
	return s
}

// Hub 获取websocket连接池
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router 构建REST路由
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/steps", s.handleSteps)
		r.Post("/step", s.handleStep)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)

		r.Get("/sensors", s.handleSensors)
		r.Get("/intersections", s.handleIntersections)
		r.Get("/intersections/{id}", s.handleIntersection)

		r.Get("/emergencies", s.handleEmergencies)
		r.Post("/emergencies", s.handleRegisterEmergency)
		r.Delete("/emergencies/{id}", s.handleUnregisterEmergency)

		r.Put("/weather", s.handleWeather)
		r.Put("/scenario", s.handleScenario)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleSetConfig)

		r.Post("/state/save", s.handleSaveState)
		r.Post("/export", s.handleExport)
		r.Get("/report", s.handleReport)
		r.Get("/logs", s.handleLogs)
	})
	r.Get("/ws", s.handleWebsocket)

	return r
}

// Serve 启动连接池与HTTP服务
// 说明：阻塞直至服务退出，Shutdown触发的退出返回nil
func (s *Server) Serve() error {
	go s.hub.Run()
	log.Infof("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭HTTP服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctx.Status())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctx.LastSnapshot())
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctx.RecentSteps(queryInt(r, "n", defaultStepCount)))
}

// handleStep 手动推进一步并返回该步快照
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctx.Step())
}

type startRequest struct {
	// 步进间隔（秒）
	Interval float64 `json:"interval,omitempty"`
}

// handleStart 启动自动步进
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req := startRequest{Interval: defaultStepInterval}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	interval := time.Duration(req.Interval * float64(time.Second))
	if err := s.ctx.StartAuto(interval); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": true, "interval": req.Interval})
}

// handleStop 停止自动步进
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctx.StopAuto(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": false})
}

type sensorsResponse struct {
	Sensors []entity.SensorReadout `json:"sensors"`
	Missing []string               `json:"missing"`
}

// handleSensors 获取传感器观测，ids参数为逗号分隔的过滤列表
func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	found, missing := s.ctx.SensorManager().Find(queryIDs(r))
	writeJSON(w, http.StatusOK, sensorsResponse{Sensors: found, Missing: emptyIfNil(missing)})
}

type intersectionsResponse struct {
	Intersections []entity.IntersectionDoc `json:"intersections"`
	Missing       []string                 `json:"missing"`
}

// handleIntersections 获取路口摘要，ids参数为逗号分隔的过滤列表
func (s *Server) handleIntersections(w http.ResponseWriter, r *http.Request) {
	found, missing := s.ctx.IntersectionManager().Find(queryIDs(r))
	writeJSON(w, http.StatusOK, intersectionsResponse{Intersections: found, Missing: emptyIfNil(missing)})
}

func (s *Server) handleIntersection(w http.ResponseWriter, r *http.Request) {
	i, err := s.ctx.IntersectionManager().GetOrError(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, i.Doc())
}

func (s *Server) handleEmergencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctx.EmergencyManager().Docs())
}

type emergencyRequest struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type,omitempty"`
	Level     string     `json:"level,omitempty"`
	Speed     float64    `json:"speed,omitempty"`
	Position  [2]float64 `json:"position,omitempty"`
	Direction string     `json:"direction,omitempty"`
}

// vehicle 由请求体构造车辆，省略的字段取应急默认值
func (req emergencyRequest) vehicle() (*entity.Vehicle, error) {
	v := entity.NewVehicle()
	v.Type = entity.VehicleEmergency
	v.Level = entity.LevelHigh
	if req.ID != "" {
		v.ID = req.ID
	}
	if req.Type != "" {
		t, err := entity.ParseVehicleType(req.Type)
		if err != nil {
			return nil, err
		}
		v.Type = t
	}
	if req.Level != "" {
		l, err := entity.ParseEmergencyLevel(req.Level)
		if err != nil {
			return nil, err
		}
		v.Level = l
	}
	if req.Direction != "" {
		d, err := entity.ParseDirection(req.Direction)
		if err != nil {
			return nil, err
		}
		v.Direction = d
	}
	v.Speed = req.Speed
	v.Position = geometry.Point{X: req.Position[0], Y: req.Position[1]}
	return v, nil
}

// handleRegisterEmergency 登记紧急车辆并返回优先级与路线
func (s *Server) handleRegisterEmergency(w http.ResponseWriter, r *http.Request) {
	var req emergencyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := req.vehicle()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := s.ctx.HandleEmergencyVehicle(v)
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUnregisterEmergency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ctx.EmergencyManager().Unregister(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"vehicle_id": id, "status": "unregistered"})
}

type weatherRequest struct {
	Weather string `json:"weather"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var req weatherRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	weather, err := entity.ParseWeather(req.Weather)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ctx.UpdateWeather(weather)
	writeJSON(w, http.StatusOK, map[string]any{"weather": weather})
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	scenario, err := entity.ParseScenario(req.Scenario)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ctx.LoadScenario(scenario)
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario":      scenario,
		"weather":       s.ctx.Weather(),
		"system_status": s.ctx.SystemStatus(),
	})
}

// handleGetConfig 读取运行参数，key为点分路径
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing key parameter"})
		return
	}
	if !s.ctx.Settings().Has(key) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown key " + key})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": s.ctx.Settings().Get(key, nil)})
}

type configRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// handleSetConfig 写入运行参数
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing key"})
		return
	}
	s.ctx.Settings().Set(req.Key, req.Value)
	log.Infof("setting %s updated via api", req.Key)
	writeJSON(w, http.StatusOK, map[string]any{"key": req.Key, "value": req.Value})
}

type saveRequest struct {
	Filename string `json:"filename,omitempty"`
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	path, err := s.ctx.SaveState(req.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleExport 导出步日志，format参数为json或csv，缺省取运行参数
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	path, err := s.ctx.ExportAnalytics(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleReport 生成文本交通报告
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.ctx.GenerateReport()))
}

// handleLogs 获取最近的日志行
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, s.logs.Recent(queryInt(r, "lines", defaultLogLines)))
}

// handleWebsocket 将HTTP连接升级为websocket并挂入连接池
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	s.hub.register <- client
	go client.writePump()
	go client.readPump()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// decodeBody 解析JSON请求体，空请求体视为合法并保留v的默认值
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func queryIDs(r *http.Request) []string {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
