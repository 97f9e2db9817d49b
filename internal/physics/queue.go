package physics

import "sync"

// updateQueue — очередь обновлений, разделяемая всеми воркерами. Конкретная
// структура данных не обязана быть lock-free: корректность требует лишь,
// чтобы TryPop возвращал либо успех, либо явную неудачу, а не терял элемент
// под гонкой — обычная мьютекс-очередь этому условию удовлетворяет, и workers
// уже трактуют неудачу TryPop как обычный повод для retry-счётчика (см.
// scheduler.go), а не как ошибку.
type updateQueue struct {
	mu    sync.Mutex
	items []Update
	head  int
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{}
}

// Push кладёт обновление в конец очереди.
func (q *updateQueue) Push(u Update) {
	q.mu.Lock()
	q.items = append(q.items, u)
	q.mu.Unlock()
}

// TryPop снимает обновление с начала очереди. Возвращает false, если очередь
// в этот момент пуста — воркер трактует это как разовую неудачу попытки, не
// как признак завершения работы.
func (q *updateQueue) TryPop() (Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return Update{}, false
	}

	u := q.items[q.head]
	q.items[q.head] = Update{}
	q.head++

	// Периодически уплотняем слайс, чтобы голова очереди не копила мусор
	// под постоянной нагрузкой.
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}

	return u, true
}

// Len возвращает приблизительную длину очереди — используется только для
// метрик наблюдаемости, не для принятия решений планировщика.
func (q *updateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
