package output

import (
	"context"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"go.mongodb.org/mongo-driver/mongo"
)

// 单条快照写入的超时时间
const recordTimeout = 2 * time.Second

// Recorder 步快照入库器
// 功能：将每步的快照写入MongoDB，供外部分析工具消费
// 说明：写入失败只记录日志，不阻断仿真
type Recorder struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewRecorder 创建步快照入库器
// 参数：uri-MongoDB连接串，db-数据库名，col-集合名
func NewRecorder(uri, db, col string) *Recorder {
	client := mongoutil.NewClient(uri)
	log.Infof("step recorder writing to %s.%s", db, col)
	return &Recorder{
		client: client,
		coll:   client.Database(db).Collection(col),
	}
}

// Record 写入单步快照
func (r *Recorder) Record(snap entity.StepSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, snap); err != nil {
		log.Errorf("failed to record step %d: %v", snap.Step, err)
	}
}

// Close 断开数据库连接
func (r *Recorder) Close() {
	if err := r.client.Disconnect(context.Background()); err != nil {
		log.Errorf("failed to disconnect mongo: %v", err)
	}
}
