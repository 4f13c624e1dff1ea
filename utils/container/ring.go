package container

import (
	"log"
)

// Ring 定长先进先出缓冲区
// 功能：保留最近capacity个元素，超出容量时丢弃最早的元素
// 说明：支持泛型，非线程安全，调用方需要自行保证并发安全
type Ring[T any] struct {
	data     []T // 元素存储，按写入顺序排列
	capacity int // 容量上限
}

// NewRing 创建定长缓冲区
// 功能：创建容量为capacity的空缓冲区
// 说明：capacity必须为正数，否则panic
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		log.Panicf("container: invalid ring capacity %d", capacity)
	}
	return &Ring[T]{
		data:     make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push 写入元素
// 功能：在缓冲区尾部写入元素，若超出容量则丢弃最早的元素
func (r *Ring[T]) Push(value T) {
	r.data = append(r.data, value)
	if len(r.data) > r.capacity {
		r.data = r.data[1:]
	}
}

// Len 获取当前元素个数
func (r *Ring[T]) Len() int {
	return len(r.data)
}

// Cap 获取容量上限
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Values 获取全部元素的副本
// 功能：按写入顺序返回全部元素
// 说明：返回副本，调用方可以自由修改
func (r *Ring[T]) Values() []T {
	values := make([]T, len(r.data))
	copy(values, r.data)
	return values
}

// Tail 获取最近n个元素的副本
// 功能：按写入顺序返回最近n个元素，n大于当前元素个数时返回全部
func (r *Ring[T]) Tail(n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	values := make([]T, n)
	copy(values, r.data[len(r.data)-n:])
	return values
}

// Last 获取最近写入的元素
// 功能：返回最近写入的元素，缓冲区为空时第二个返回值为false
func (r *Ring[T]) Last() (T, bool) {
	if len(r.data) == 0 {
		var zero T
		return zero, false
	}
	return r.data[len(r.data)-1], true
}

// Clear 清空缓冲区
func (r *Ring[T]) Clear() {
	r.data = r.data[:0]
}
