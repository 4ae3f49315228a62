// Package tagctl реализует обмен командами с контроллером NFC-меток реактивов
// (ESP32 со считывателем и весами) по последовательному порту.
//
// Протокол строковый: хост отправляет токен команды (WRITE, READ, TRACK, OUT),
// для WRITE следом строку полезной нагрузки из 7 полей через запятую, а затем
// читает ответные строки до появления завершающего маркера или до истечения
// дедлайна команды.
//
// Основные части:
//   - ConnectionManager владеет единственным соединением с портом
//   - EncodeRecord собирает строку полезной нагрузки
//   - Classifier сопоставляет строки ответа с таблицей маркеров команды
//   - Session ведёт одну команду от очистки буфера до итогового Outcome
//   - Client объединяет всё это и гарантирует не более одной активной сессии
//
// Пример:
//
//	client, err := tagctl.NewClient(tagctl.Config{
//	    OnNote: func(n tagctl.Note) { fmt.Println(n.Text) },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Connect("COM8", 115200); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	res := client.RunCommand(context.Background(), tagctl.CommandTrack, nil)
//	fmt.Println(res.Outcome)
package tagctl
